// Package generation provides the resilient structured-output pipeline used
// by the lesson orchestrators: a catalog of interchangeable text-generation
// models, a uniform client contract per provider family, best-effort JSON
// extraction from free-form model output, and a dispatcher that walks a
// shuffled catalog until one model produces a usable JSON object. It
// abstracts the details of the provider integrations (Gemini, Groq), so the
// application can request a structured result without coupling to a
// specific external service.
package generation
