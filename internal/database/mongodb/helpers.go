package mongodb

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xshopai/seeder/internal/database/common"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	codeUnauthorized     = 13
	codeRequestRateLarge = 16500
	codeTooManyRequests  = 429
)

var retryAfterPattern = regexp.MustCompile(`RetryAfterMs=(\d+)`)

// Documents encodes typed values through their bson tags into records.
func Documents[T any](items []T) ([]common.Record, error) {
	out := make([]common.Record, 0, len(items))
	for i, item := range items {
		raw, err := bson.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to encode document %d: %w", i+1, err)
		}
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %d: %w", i+1, err)
		}
		out = append(out, common.Record(doc))
	}
	return out, nil
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isRateLimited(err) {
		return &common.RateLimitError{
			RetryAfter: parseRetryAfter(err.Error()),
			Written:    writtenBefore(err),
			Err:        fmt.Errorf("failed to %s: %w", op, err),
		}
	}
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(codeUnauthorized) {
		return common.Forbidden(op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// writtenBefore returns how many leading documents an ordered InsertMany
// stored before its first write error.
func writtenBefore(err error) int {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return 0
	}
	first := bwe.WriteErrors[0].Index
	for _, we := range bwe.WriteErrors[1:] {
		first = min(first, we.Index)
	}
	return first
}

func isRateLimited(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(codeRequestRateLarge) || se.HasErrorCode(codeTooManyRequests)) {
		return true
	}
	return strings.Contains(err.Error(), "TooManyRequests")
}

func parseRetryAfter(msg string) time.Duration {
	m := retryAfterPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	ms, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
