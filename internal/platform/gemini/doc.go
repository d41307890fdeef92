// Package gemini provides an implementation of the generation.ModelClient
// interface backed by Google's Gemini API.
//
// This package is an infrastructure adapter connecting the generation
// dispatcher to Google's external Gemini AI service. It translates the
// dispatcher's uniform request contract into Gemini API calls without
// exposing the details of the external service to the core application.
//
// Key responsibilities:
//
// 1. API Communication:
//   - Serves every catalog model in the google provider family
//   - Applies the request's sampling parameters (temperature, top_p,
//     max output tokens) to each call
//
// 2. Error Handling:
//   - Implements retry logic with exponential backoff for transient errors
//   - Categorizes API failures into transient and permanent outcomes
//   - Surfaces content filtering as a permanent, non-retryable error
//
// The package depends on Google's google.golang.org/genai client library
// for communicating with the Gemini API, and handles authentication,
// request formatting, and response extraction according to Google's
// API specifications.
package gemini
