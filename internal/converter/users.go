package converter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xshopai/seeder/internal/fixtures"
	"github.com/xshopai/seeder/internal/identity"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Pre-computed hashes for the demo passwords. This is a seeding shortcut;
// update-passwords re-hashes the demo accounts properly.
var passwordHashes = map[string]string{
	"guest":     "$2b$10$rG4Xf6YZ8vq2X5K1MnOpAeW3LmBpZ7Y8N9QwRsT4UvW5XyZ6A1B2C",
	"admin":     "$2b$10$xH5Yg7AB9wq3Z6L2NoQrBeX4MnCqA8Z9O0RxStU5VwX6YzA7B2C3D",
	"Guest123!": "$2b$10$Q1wErTyUiOpAsDfGhJkLzu9Xc8Vb7Nm6Lk5Jh4Gf3Ds2Aq1Ws0Ede",
	"Admin123!": "$2b$10$Z9xCvBnMaSdFgHjKlQwEru1Ty2Ui3Op4As5Df6Gh7Jk8Lz9Xc0Vbn",
}

const fallbackPasswordHash = "$2b$10$rG4Xf6YZ8vq2X5K1MnOpAeW3LmBpZ7Y8N9QwRsT4UvW5XyZ6A1B2C"

// HashPassword maps a demo plaintext to its pre-computed hash.
func HashPassword(plain string) string {
	if h, ok := passwordHashes[plain]; ok {
		return h
	}
	return fallbackPasswordHash
}

// BcryptPassword hashes plain with a fresh salt at the default cost.
func BcryptPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

type Address struct {
	Street  string `bson:"street"`
	City    string `bson:"city"`
	State   string `bson:"state"`
	ZipCode string `bson:"zipCode"`
	Country string `bson:"country"`
}

type Preferences struct {
	Newsletter    bool   `bson:"newsletter"`
	Notifications bool   `bson:"notifications"`
	Language      string `bson:"language"`
	Currency      string `bson:"currency"`
}

type User struct {
	Key             string             `bson:"-"`
	ID              primitive.ObjectID `bson:"_id"`
	Email           string             `bson:"email"`
	Password        string             `bson:"password"`
	FirstName       string             `bson:"firstName"`
	LastName        string             `bson:"lastName"`
	PhoneNumber     string             `bson:"phoneNumber"`
	Roles           []string           `bson:"roles"`
	IsActive        bool               `bson:"isActive"`
	IsEmailVerified bool               `bson:"isEmailVerified"`
	Address         Address            `bson:"address"`
	Preferences     Preferences        `bson:"preferences"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
	CreatedBy       string             `bson:"createdBy"`
}

// ConvertUsers builds user documents; keys are user_<position>.
func ConvertUsers(raw []fixtures.Record, ctx *Context) []User {
	users := make([]User, 0, len(raw))
	for i, r := range raw {
		key := identity.Key("user", i+1)
		now := ctx.Now().UTC()

		roles := r.Strings("roles")
		if len(roles) == 0 {
			roles = []string{"customer"}
		}

		users = append(users, User{
			Key:             key,
			ID:              ctx.IDs.GetOrCreateObjectID(key),
			Email:           strings.ToLower(r.String("email")),
			Password:        HashPassword(r.String("password")),
			FirstName:       r.String("firstName"),
			LastName:        r.String("lastName"),
			PhoneNumber:     r.String("phoneNumber"),
			Roles:           roles,
			IsActive:        r.BoolOr("isActive", true),
			IsEmailVerified: r.BoolOr("isEmailVerified", true),
			Address:         convertAddress(r.Map("address")),
			Preferences:     convertPreferences(r.Map("preferences")),
			CreatedAt:       ctx.RecentTime(180),
			UpdatedAt:       now,
			CreatedBy:       "SEEDER",
		})
	}
	return users
}

func convertAddress(r fixtures.Record) Address {
	return Address{
		Street:  r.StringOr("street", "123 Main St"),
		City:    r.StringOr("city", "Seattle"),
		State:   r.StringOr("state", "WA"),
		ZipCode: r.StringOr("zipCode", "98101"),
		Country: r.StringOr("country", "US"),
	}
}

func convertPreferences(r fixtures.Record) Preferences {
	return Preferences{
		Newsletter:    r.BoolOr("newsletter", false),
		Notifications: r.BoolOr("notifications", true),
		Language:      r.StringOr("language", "en"),
		Currency:      r.StringOr("currency", "USD"),
	}
}
