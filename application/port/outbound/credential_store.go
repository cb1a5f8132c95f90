package outbound

import (
	"context"
	"errors"

	"github.com/agrisync/agrisync/domain/valueobject"
)

var ErrNoRecoveryCredentials = errors.New("no recovery credentials stored")

// CredentialStore keeps recovery credentials sealed at rest so a session
// that could not be silently refreshed while offline can be re-established
// once connectivity returns. Storing them at all is a deliberate
// availability-over-exposure tradeoff.
type CredentialStore interface {
	SaveRecovery(ctx context.Context, creds *valueobject.Credentials) error
	LoadRecovery(ctx context.Context) (*valueobject.Credentials, error)
	ClearRecovery(ctx context.Context) error
}

var ErrNoOfflineDigest = errors.New("no offline digest stored")

// OfflineDigestStore keeps a one-way digest of the signed-in user's
// password so the device can re-verify the user without connectivity.
type OfflineDigestStore interface {
	SaveOfflineDigest(ctx context.Context, email, digest string) error
	LoadOfflineDigest(ctx context.Context) (email, digest string, err error)
	ClearOfflineDigest(ctx context.Context) error
}
