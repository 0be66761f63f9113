package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-jobboard-client/internal/domain"

	bolt "go.etcd.io/bbolt"
)

var (
	credentialsBucket = []byte("credentials")
	tokenKey          = []byte("auth_token")
	profileKey        = []byte("user_profile")
)

// BoltStore persists credentials in a local bbolt file, the desktop
// equivalent of browser local storage.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("credential: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(credentialsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(ctx context.Context) (domain.Credentials, error) {
	var creds domain.Credentials
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(credentialsBucket)
		if b == nil {
			return nil
		}
		// bbolt values are only valid inside the transaction
		creds.Token = string(b.Get(tokenKey))
		if raw := b.Get(profileKey); len(raw) > 0 {
			var p domain.Profile
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("credential: corrupt profile: %w", err)
			}
			creds.Profile = &p
		}
		return nil
	})
	return creds, err
}

// Save writes token and profile in one transaction.
func (s *BoltStore) Save(ctx context.Context, token string, profile domain.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(credentialsBucket)
		if err != nil {
			return err
		}
		if err := b.Put(tokenKey, []byte(token)); err != nil {
			return err
		}
		return b.Put(profileKey, raw)
	})
}

func (s *BoltStore) Clear(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(credentialsBucket)
		if b == nil {
			return nil
		}
		if err := b.Delete(tokenKey); err != nil {
			return err
		}
		return b.Delete(profileKey)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
