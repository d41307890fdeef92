package generation

import "math/rand"

// Provider identifies a provider family sharing one client implementation.
type Provider string

// Known provider families
const (
	ProviderGoogle Provider = "google"
	ProviderGroq   Provider = "groq"
)

// Tier labels the quality class of a model.
type Tier string

// Known tiers
const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// ModelDescriptor describes one text-generation backend: its wire name, the
// free-tier daily request budget, whether it accepts image input, the
// provider family that serves it, and its quality tier. Descriptors are
// immutable after process start.
type ModelDescriptor struct {
	Name              string
	DailyRequestLimit int
	SupportsImages    bool
	Provider          Provider
	Tier              Tier
}

// Catalog is an ordered list of available models. The order is only a
// storage order; dispatch uses ShuffledOrder.
type Catalog []ModelDescriptor

// DefaultCatalog returns the production model registry.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Name:              "gemma-3-27b-it",
			DailyRequestLimit: 14400,
			SupportsImages:    true,
			Provider:          ProviderGoogle,
			Tier:              TierPremium,
		},
		{
			Name:              "gemma-3-12b-it",
			DailyRequestLimit: 14400,
			SupportsImages:    false,
			Provider:          ProviderGoogle,
			Tier:              TierBasic,
		},
		{
			Name:              "gemini-2.0-flash-lite",
			DailyRequestLimit: 1500,
			SupportsImages:    false,
			Provider:          ProviderGoogle,
			Tier:              TierPremium,
		},
		{
			Name:              "gemini-2.0-flash",
			DailyRequestLimit: 1500,
			SupportsImages:    false,
			Provider:          ProviderGoogle,
			Tier:              TierPremium,
		},
		{
			Name:              "llama-3.3-70b-versatile",
			DailyRequestLimit: 1000,
			SupportsImages:    false,
			Provider:          ProviderGroq,
			Tier:              TierPremium,
		},
		{
			Name:              "qwen/qwen3-32b",
			DailyRequestLimit: 1000,
			SupportsImages:    false,
			Provider:          ProviderGroq,
			Tier:              TierPremium,
		},
	}
}

// ShuffledOrder returns a random permutation of the catalog drawn from rng,
// leaving the catalog itself untouched. Shuffling spreads load across
// models that share failure-prone upstream quotas instead of always
// hammering the first-listed one; a fixed rng seed makes the order
// reproducible.
func (c Catalog) ShuffledOrder(rng *rand.Rand) []ModelDescriptor {
	order := make([]ModelDescriptor, len(c))
	copy(order, c)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
