// Package validator checks that every review fixture is backed by a
// purchase in the order fixture, and can regenerate a consistent review set.
package validator

import (
	"fmt"

	"github.com/xshopai/seeder/internal/fixtures"
	"github.com/xshopai/seeder/internal/identity"
)

type Validator struct {
	Orders  []fixtures.Record
	Reviews []fixtures.Record
}

type Result struct {
	Valid      []fixtures.Record
	Invalid    []fixtures.Record
	Violations []string
}

func (r Result) OK() bool { return len(r.Invalid) == 0 }

func New(dir string) (*Validator, error) {
	orders, err := fixtures.Load(dir, fixtures.Orders)
	if err != nil {
		return nil, err
	}
	reviews, err := fixtures.Load(dir, fixtures.Reviews)
	if err != nil {
		return nil, err
	}
	return &Validator{Orders: orders, Reviews: reviews}, nil
}

// PurchaseHistory maps each user key to the set of product keys that appear
// in that user's order lines.
func (v *Validator) PurchaseHistory() map[string]map[string]bool {
	history := make(map[string]map[string]bool)
	for _, order := range v.Orders {
		user, ok := identity.ResolvePlaceholder(order.String("userId"))
		if !ok {
			continue
		}
		for _, item := range order.Slice("items") {
			product, ok := identity.ResolvePlaceholder(item.String("productId"))
			if !ok {
				continue
			}
			if history[user] == nil {
				history[user] = make(map[string]bool)
			}
			history[user][product] = true
		}
	}
	return history
}

func (v *Validator) ValidateReviews() Result {
	history := v.PurchaseHistory()
	var res Result
	for i, review := range v.Reviews {
		user, okUser := identity.ResolvePlaceholder(review.String("userId"))
		product, okProduct := identity.ResolvePlaceholder(review.String("productId"))
		switch {
		case !okUser || !okProduct:
			res.Invalid = append(res.Invalid, review)
			res.Violations = append(res.Violations,
				fmt.Sprintf("review #%d: unresolvable reference (user %q, product %q)", i+1, review.String("userId"), review.String("productId")))
		case !history[user][product]:
			res.Invalid = append(res.Invalid, review)
			res.Violations = append(res.Violations, fmt.Sprintf("review #%d: %s never purchased %s", i+1, user, product))
		default:
			res.Valid = append(res.Valid, review)
		}
	}
	return res
}

var templates = []struct {
	rating  int
	title   string
	comment string
}{
	{5, "Absolutely love it", "Exceeded my expectations. The quality is outstanding and it arrived quickly."},
	{4, "Great purchase", "Really happy with this one. Minor nitpicks but overall a great buy."},
	{5, "Highly recommend", "Exactly as described. I would buy this again without hesitation."},
	{4, "Solid quality", "Well made and does the job. Fits in nicely with what I already own."},
	{3, "Decent for the price", "It's okay. Does what it says, though I expected a little more."},
}

// GenerateValidReviews emits one verified review for every purchased
// (user, product) pair, users and products in key order, cycling through
// the rating templates.
func (v *Validator) GenerateValidReviews() []fixtures.Record {
	history := v.PurchaseHistory()
	users := make([]string, 0, len(history))
	for user := range history {
		users = append(users, user)
	}
	identity.SortKeys(users)

	var out []fixtures.Record
	for _, user := range users {
		products := make([]string, 0, len(history[user]))
		for product := range history[user] {
			products = append(products, product)
		}
		identity.SortKeys(products)

		for _, product := range products {
			t := templates[len(out)%len(templates)]
			out = append(out, fixtures.Record{
				"userId":             placeholder(user),
				"productId":          placeholder(product),
				"rating":             t.rating,
				"title":              t.title,
				"comment":            t.comment,
				"isVerifiedPurchase": true,
				"status":             "approved",
				"helpfulVotes":       0,
			})
		}
	}
	return out
}

// Repair replaces the review fixture in dir with the generated set. The
// previous file is kept as reviews.json.bak.
func (v *Validator) Repair(dir string) (int, error) {
	reviews := v.GenerateValidReviews()
	if err := fixtures.Write(dir, fixtures.Reviews, reviews); err != nil {
		return 0, fmt.Errorf("failed to write repaired reviews: %w", err)
	}
	v.Reviews = reviews
	return len(reviews), nil
}

func placeholder(key string) string {
	kind, n, _ := identity.ParseKey(key)
	return identity.Placeholder(kind, n)
}

