package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// memoryUsers is an in-memory UserStorage.
type memoryUsers struct {
	byEmail map[string]*models.User
	next    int
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*models.User{}}
}

func (m *memoryUsers) CreateUser(_ context.Context, user *models.User) error {
	if _, ok := m.byEmail[user.Email]; ok {
		return storage.ErrEmailTaken
	}
	m.next++
	user.ID = string(rune('a'+m.next-1)) + "-id"
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.byEmail[email], nil
}

func newTestAuthenticator() (*PasswordAuthenticator, *memoryUsers) {
	users := newMemoryUsers()
	return NewPasswordAuthenticator(users).WithCost(bcrypt.MinCost), users
}

func TestRegister(t *testing.T) {
	valid := Registration{Name: "Alice", Email: " Alice@Example.com ", Phone: "555-0100", Credential: "password123"}

	tests := []struct {
		name    string
		reg     func(r Registration) Registration
		wantErr error
	}{
		{"valid", func(r Registration) Registration { return r }, nil},
		{"short password", func(r Registration) Registration { r.Credential = "short"; return r }, ErrWeakPassword},
		{"missing name", func(r Registration) Registration { r.Name = " "; return r }, ErrMissingField},
		{"missing email", func(r Registration) Registration { r.Email = ""; return r }, ErrMissingField},
		{"missing phone", func(r Registration) Registration { r.Phone = ""; return r }, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAuthenticator()
			user, err := a.Register(context.Background(), tt.reg(valid))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if user.Email != "alice@example.com" {
				t.Errorf("Email = %q, want normalized address", user.Email)
			}
			if user.PasswordHash == "" || user.PasswordHash == valid.Credential {
				t.Error("expected password to be hashed")
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a, _ := newTestAuthenticator()
	reg := Registration{Name: "Alice", Email: "alice@example.com", Phone: "555-0100", Credential: "password123"}

	if _, err := a.Register(context.Background(), reg); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	reg.Email = "ALICE@example.com"
	if _, err := a.Register(context.Background(), reg); !errors.Is(err, ErrEmailExists) {
		t.Errorf("second Register error = %v, want %v", err, ErrEmailExists)
	}
}

// blindUsers misses every email lookup, as when another registration for the
// same email commits between the lookup and the insert.
type blindUsers struct {
	*memoryUsers
}

func (blindUsers) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}

func TestRegisterConcurrentDuplicateEmail(t *testing.T) {
	users := blindUsers{newMemoryUsers()}
	a := NewPasswordAuthenticator(users).WithCost(bcrypt.MinCost)
	reg := Registration{Name: "Alice", Email: "alice@example.com", Phone: "555-0100", Credential: "password123"}

	if _, err := a.Register(context.Background(), reg); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := a.Register(context.Background(), reg); !errors.Is(err, ErrEmailExists) {
		t.Errorf("second Register error = %v, want %v", err, ErrEmailExists)
	}
}

func TestAuthenticate(t *testing.T) {
	a, _ := newTestAuthenticator()
	ctx := context.Background()
	registered, err := a.Register(ctx, Registration{Name: "Alice", Email: "alice@example.com", Phone: "555-0100", Credential: "password123"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := a.Authenticate(ctx, "Alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("authenticated %s, want %s", user.ID, registered.ID)
	}

	if _, err := a.Authenticate(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want %v", err, ErrInvalidCredentials)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" || claims.Subject != "user-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		old, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(old); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("unsigned token", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("sign none: %v", err)
		}
		if _, err := manager.Validate(s); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("no expiry", func(t *testing.T) {
		forever := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			UserID:           "user-1",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "splitledger"},
		})
		s, err := forever.SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := manager.Validate(s); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := manager.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate error = %v, want %v", err, ErrInvalidToken)
		}
	})
}
