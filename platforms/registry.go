// ABOUTME: Builds platform clients from stored credentials
// ABOUTME: Platforms without credentials resolve to ErrNotConnected
package platforms

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/harperreed/amplify/db"
	"github.com/harperreed/amplify/models"
)

// Resolver hands out a ready client for a platform name.
type Resolver interface {
	Platform(name string) (Platform, error)
}

// Registry resolves clients lazily so credential changes take effect on the
// next dispatch.
type Registry struct {
	db       *sql.DB
	baseURLs map[string]string

	mu     sync.RWMutex
	static map[string]Platform
}

// NewRegistry creates a registry. baseURLs overrides API hosts by platform
// name and may be nil.
func NewRegistry(database *sql.DB, baseURLs map[string]string) *Registry {
	return &Registry{
		db:       database,
		baseURLs: baseURLs,
		static:   make(map[string]Platform),
	}
}

// Register pins a client for its platform, bypassing stored credentials.
func (r *Registry) Register(p Platform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.static[p.Name()] = p
}

func (r *Registry) Platform(name string) (Platform, error) {
	r.mu.RLock()
	p, ok := r.static[name]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	if err := models.ValidatePlatform(name); err != nil {
		return nil, err
	}

	cred, err := r.credential(name)
	if err != nil {
		return nil, err
	}

	base := r.baseURLs[name]
	switch name {
	case models.PlatformTwitter:
		return NewTwitter(cred.AccessToken, cred.AccountID, base), nil
	case models.PlatformLinkedIn:
		return NewLinkedIn(cred.AccessToken, cred.AccountID, base), nil
	case models.PlatformFacebook:
		return NewFacebook(cred.AccessToken, cred.AccountID, base), nil
	case models.PlatformInstagram:
		return NewInstagram(cred.AccessToken, cred.AccountID, base), nil
	}
	return nil, fmt.Errorf("unknown platform: %s", name)
}

// Twitter returns the concrete Twitter client, which also reads mentions.
func (r *Registry) Twitter() (*Twitter, error) {
	p, err := r.Platform(models.PlatformTwitter)
	if err != nil {
		return nil, err
	}
	t, ok := p.(*Twitter)
	if !ok {
		return nil, fmt.Errorf("twitter client does not support mentions")
	}
	return t, nil
}

func (r *Registry) credential(name string) (*models.PlatformCredential, error) {
	if r.db == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNotConnected)
	}
	cred, err := db.GetCredential(r.db, name)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNotConnected)
	}
	return cred, nil
}
