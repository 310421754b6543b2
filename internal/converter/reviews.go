package converter

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xshopai/seeder/internal/fixtures"
	"github.com/xshopai/seeder/internal/identity"
)

type Review struct {
	Key                string
	ID                 uuid.UUID
	UserKey            string
	UserID             string
	ProductKey         string
	ProductID          string
	Username           string
	Rating             int
	Title              string
	Comment            string
	IsVerifiedPurchase bool
	HelpfulVotes       int
	Status             string
	SentimentLabel     string
	SentimentScore     float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (r Review) Record() map[string]interface{} {
	return map[string]interface{}{
		"id":                   r.ID.String(),
		"product_id":           r.ProductID,
		"user_id":              r.UserID,
		"username":             r.Username,
		"rating":               r.Rating,
		"title":                r.Title,
		"comment":              r.Comment,
		"is_verified_purchase": r.IsVerifiedPurchase,
		"helpful_votes":        r.HelpfulVotes,
		"status":               r.Status,
		"sentiment_label":      r.SentimentLabel,
		"sentiment_score":      r.SentimentScore,
		"created_at":           r.CreatedAt,
		"updated_at":           r.UpdatedAt,
	}
}

// Sentiment derives a label and a score in [0,1] from a 1-5 star rating.
func Sentiment(rating int) (string, float64) {
	score := round(float64(min(max(rating, 1), 5)-1)/4, 2)
	switch {
	case rating >= 4:
		return "positive", score
	case rating == 3:
		return "neutral", score
	default:
		return "negative", score
	}
}

// ConvertReviews resolves PLACEHOLDER_USER_n / PLACEHOLDER_PRODUCT_n
// references through the mapper. A review whose user or product has no
// identifier yet is dropped; the second return value counts those.
func ConvertReviews(raw []fixtures.Record, ctx *Context) ([]Review, int) {
	var (
		out     []Review
		skipped int
	)
	for i, r := range raw {
		key := identity.Key("review", i+1)
		userKey, okUser := identity.ResolvePlaceholder(r.String("userId"))
		productKey, okProduct := identity.ResolvePlaceholder(r.String("productId"))
		if !okUser || !okProduct {
			skipped++
			continue
		}
		userID, okUser := ctx.IDs.LookupObjectID(userKey)
		productID, okProduct := ctx.IDs.LookupObjectID(productKey)
		if !okUser || !okProduct {
			skipped++
			continue
		}

		rating := min(max(r.IntOr("rating", 5), 1), 5)
		label, score := Sentiment(rating)
		if s := r.Map("sentiment"); len(s) > 0 {
			label = s.StringOr("label", label)
			if s.Has("score") {
				score = s.Float("score")
			}
		}

		created := ctx.RecentTime(60)
		out = append(out, Review{
			Key:                key,
			ID:                 ctx.IDs.GetOrCreateUUID(key),
			UserKey:            userKey,
			UserID:             userID.Hex(),
			ProductKey:         productKey,
			ProductID:          productID.Hex(),
			Username:           r.StringOr("username", LookupCustomer(userKey).Name),
			Rating:             rating,
			Title:              r.String("title"),
			Comment:            r.String("comment"),
			IsVerifiedPurchase: r.BoolOr("isVerifiedPurchase", true),
			HelpfulVotes:       r.Int("helpfulVotes"),
			Status:             r.StringOr("status", "approved"),
			SentimentLabel:     label,
			SentimentScore:     score,
			CreatedAt:          created,
			UpdatedAt:          created,
		})
		ctx.IDs.AddRelationship(userKey, key)
		ctx.IDs.AddRelationship(productKey, key)
	}
	return out, skipped
}

type RatingAggregate struct {
	ProductKey         string         `bson:"-"`
	ProductID          string         `bson:"-"`
	AverageRating      float64        `bson:"average_rating"`
	TotalReviews       int            `bson:"total_reviews"`
	RatingDistribution map[string]int `bson:"rating_distribution"`
	VerifiedReviews    int            `bson:"verified_reviews"`
	LastUpdated        time.Time      `bson:"last_updated"`
}

func (a RatingAggregate) Record() map[string]interface{} {
	rec := map[string]interface{}{
		"product_id":       a.ProductID,
		"average_rating":   a.AverageRating,
		"total_reviews":    a.TotalReviews,
		"verified_reviews": a.VerifiedReviews,
		"last_updated":     a.LastUpdated,
	}
	for star := 1; star <= 5; star++ {
		rec["rating_"+strconv.Itoa(star)] = a.RatingDistribution[strconv.Itoa(star)]
	}
	return rec
}

// AggregateRatings folds reviews into one aggregate per product, in the order
// products first appear. The distribution always carries all five stars.
func AggregateRatings(reviews []Review, now time.Time) []RatingAggregate {
	index := map[string]int{}
	var out []RatingAggregate
	sums := []int{}
	for _, r := range reviews {
		i, ok := index[r.ProductKey]
		if !ok {
			i = len(out)
			index[r.ProductKey] = i
			out = append(out, RatingAggregate{
				ProductKey:         r.ProductKey,
				ProductID:          r.ProductID,
				RatingDistribution: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
				LastUpdated:        now.UTC(),
			})
			sums = append(sums, 0)
		}
		agg := &out[i]
		agg.TotalReviews++
		agg.RatingDistribution[strconv.Itoa(r.Rating)]++
		if r.IsVerifiedPurchase {
			agg.VerifiedReviews++
		}
		sums[i] += r.Rating
	}
	for i := range out {
		out[i].AverageRating = round(float64(sums[i])/float64(out[i].TotalReviews), 1)
	}
	return out
}
