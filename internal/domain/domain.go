package domain

import (
	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/restaurant"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/taste"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/venue"
)

type TasteSignal = taste.TasteSignal
type TasteProfile = taste.TasteProfile
type ProfileFields = taste.ProfileFields
type SignalKind = taste.SignalKind
type EmbeddingSource = taste.EmbeddingSource

type Restaurant = restaurant.Restaurant
type RestaurantCacheEntry = restaurant.CacheEntry

type VenueQuery = venue.Query
type VenueCandidate = venue.Candidate
type VenueProfile = venue.Profile
type VenueResolution = venue.Resolution

const (
	SignalReview     = taste.SignalReview
	SignalWishlist   = taste.SignalWishlist
	SignalChat       = taste.SignalChat
	SignalOnboarding = taste.SignalOnboarding

	SourceCombined   = taste.SourceCombined
	SourceOnboarding = taste.SourceOnboarding
	SourceChat       = taste.SourceChat
	SourceReviews    = taste.SourceReviews

	RestaurantStaleAfter = restaurant.StaleAfter
)
