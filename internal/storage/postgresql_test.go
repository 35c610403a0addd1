package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grmlvv/video-hosting/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	tests := []struct {
		name    string
		user    models.User
		wantErr error
		setup   func(t *testing.T, factory *TestDataFactory)
	}{
		{
			name: "successful create",
			user: models.User{
				Username:     "alice",
				Email:        "alice@example.com",
				FullName:     "Alice Smith",
				PasswordHash: "hashedpassword",
				AvatarURL:    "http://cdn/alice.png",
			},
			setup: func(_ *testing.T, _ *TestDataFactory) {},
		},
		{
			name: "duplicate username",
			user: models.User{
				Username:     "alice",
				Email:        "other@example.com",
				FullName:     "Alice Smith",
				PasswordHash: "hashedpassword",
				AvatarURL:    "http://cdn/alice.png",
			},
			wantErr: ErrUserExists,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, "alice", "alice@example.com")
			},
		},
		{
			name: "duplicate email",
			user: models.User{
				Username:     "bob",
				Email:        "alice@example.com",
				FullName:     "Bob Jones",
				PasswordHash: "hashedpassword",
				AvatarURL:    "http://cdn/bob.png",
			},
			wantErr: ErrUserExists,
			setup: func(t *testing.T, factory *TestDataFactory) {
				factory.CreateUser(t, "alice", "alice@example.com")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.setup(t, factory)

			uid, err := storage.CreateUser(context.Background(), tt.user)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, uid)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, uid)

				got, err := storage.GetUserByUID(context.Background(), uid)
				require.NoError(t, err)
				assert.Equal(t, tt.user.Username, got.Username)
				assert.Equal(t, tt.user.Email, got.Email)
				assert.Nil(t, got.RefreshToken)
			}
		})
	}
}

func TestStorage_GetUserByUsername(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "alice", "alice@example.com")

	t.Run("found regardless of input case", func(t *testing.T) {
		got, err := storage.GetUserByUsername(context.Background(), "Alice")
		require.NoError(t, err)
		assert.Equal(t, uid, got.UID)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("unknown username", func(t *testing.T) {
		got, err := storage.GetUserByUsername(context.Background(), "nobody")
		require.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, got)
	})
}

func TestStorage_GetUserByUsernameOrEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "alice", "alice@example.com")

	t.Run("match by username", func(t *testing.T) {
		got, err := storage.GetUserByUsernameOrEmail(context.Background(), "alice", "")
		require.NoError(t, err)
		assert.Equal(t, uid, got.UID)
	})

	t.Run("match by email", func(t *testing.T) {
		got, err := storage.GetUserByUsernameOrEmail(context.Background(), "", "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, uid, got.UID)
	})

	t.Run("no match", func(t *testing.T) {
		got, err := storage.GetUserByUsernameOrEmail(context.Background(), "bob", "bob@example.com")
		require.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, got)
	})
}

func TestStorage_SetRefreshToken(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)
	uid := factory.CreateUser(t, "alice", "alice@example.com")

	t.Run("stores token", func(t *testing.T) {
		token := "session.refresh.token"
		err := storage.SetRefreshToken(context.Background(), uid, &token)
		require.NoError(t, err)
		verification.VerifyStoredRefreshToken(t, uid, &token)
	})

	t.Run("nil clears token", func(t *testing.T) {
		err := storage.SetRefreshToken(context.Background(), uid, nil)
		require.NoError(t, err)
		verification.VerifyStoredRefreshToken(t, uid, nil)
	})

	t.Run("unknown user", func(t *testing.T) {
		token := "session.refresh.token"
		err := storage.SetRefreshToken(context.Background(), "00000000-0000-0000-0000-000000000000", &token)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestStorage_RotateRefreshToken(t *testing.T) {
	tests := []struct {
		name        string
		storedToken string
		oldToken    string
		newToken    string
		wantErr     error
		wantStored  string
	}{
		{
			name:        "successful rotation",
			storedToken: "current.token",
			oldToken:    "current.token",
			newToken:    "next.token",
			wantStored:  "next.token",
		},
		{
			name:        "stale token loses the race",
			storedToken: "already.rotated",
			oldToken:    "current.token",
			newToken:    "next.token",
			wantErr:     ErrRotationConflict,
			wantStored:  "already.rotated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			verification := NewTestVerification(storage)
			uid := factory.CreateUser(t, "alice", "alice@example.com")
			factory.SetRefreshToken(t, uid, tt.storedToken)

			err := storage.RotateRefreshToken(context.Background(), uid, tt.oldToken, tt.newToken)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			verification.VerifyStoredRefreshToken(t, uid, &tt.wantStored)
		})
	}

	t.Run("revoked token cannot rotate", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		verification := NewTestVerification(storage)
		uid := factory.CreateUser(t, "alice", "alice@example.com")

		err := storage.RotateRefreshToken(context.Background(), uid, "revoked.token", "next.token")
		require.ErrorIs(t, err, ErrRotationConflict)
		verification.VerifyStoredRefreshToken(t, uid, nil)
	})
}

func TestStorage_UpdatePasswordHash(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)
	uid := factory.CreateUser(t, "alice", "alice@example.com")
	factory.SetRefreshToken(t, uid, "active.session")

	t.Run("updates hash and keeps session", func(t *testing.T) {
		err := storage.UpdatePasswordHash(context.Background(), uid, "newhash")
		require.NoError(t, err)

		got, err := storage.GetUserByUID(context.Background(), uid)
		require.NoError(t, err)
		assert.Equal(t, "newhash", got.PasswordHash)

		activeSession := "active.session"
		verification.VerifyStoredRefreshToken(t, uid, &activeSession)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := storage.UpdatePasswordHash(context.Background(), "00000000-0000-0000-0000-000000000000", "newhash")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestStorage_CreateEdge(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)
	subscriberUID := factory.CreateUser(t, "viewer", "viewer@example.com")
	channelUID := factory.CreateUser(t, "channel", "channel@example.com")

	t.Run("creates edge", func(t *testing.T) {
		id, err := storage.CreateEdge(context.Background(), subscriberUID, channelUID)
		require.NoError(t, err)
		assert.Positive(t, id)
		verification.VerifyEdgeCount(t, subscriberUID, channelUID, 1)
	})

	t.Run("duplicate edge", func(t *testing.T) {
		_, err := storage.CreateEdge(context.Background(), subscriberUID, channelUID)
		require.ErrorIs(t, err, ErrEdgeExists)
		verification.VerifyEdgeCount(t, subscriberUID, channelUID, 1)
	})
}

func TestStorage_FindEdge(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	subscriberUID := factory.CreateUser(t, "viewer", "viewer@example.com")
	channelUID := factory.CreateUser(t, "channel", "channel@example.com")
	edgeID := factory.CreateEdge(t, subscriberUID, channelUID)

	t.Run("existing edge", func(t *testing.T) {
		got, err := storage.FindEdge(context.Background(), subscriberUID, channelUID)
		require.NoError(t, err)
		assert.Equal(t, edgeID, got.ID)
		assert.Equal(t, subscriberUID, got.SubscriberUID)
		assert.Equal(t, channelUID, got.ChannelUID)
	})

	t.Run("reversed direction has no edge", func(t *testing.T) {
		got, err := storage.FindEdge(context.Background(), channelUID, subscriberUID)
		require.ErrorIs(t, err, ErrEdgeNotFound)
		assert.Nil(t, got)
	})
}

func TestStorage_DeleteEdge(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)
	subscriberUID := factory.CreateUser(t, "viewer", "viewer@example.com")
	channelUID := factory.CreateUser(t, "channel", "channel@example.com")
	edgeID := factory.CreateEdge(t, subscriberUID, channelUID)

	t.Run("deletes edge", func(t *testing.T) {
		err := storage.DeleteEdge(context.Background(), edgeID)
		require.NoError(t, err)
		verification.VerifyEdgeCount(t, subscriberUID, channelUID, 0)
	})

	t.Run("already deleted", func(t *testing.T) {
		err := storage.DeleteEdge(context.Background(), edgeID)
		require.ErrorIs(t, err, ErrEdgeNotFound)
	})
}

func TestStorage_ListChannelSubscribers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	channelUID := factory.CreateUser(t, "channel", "channel@example.com")
	firstUID := factory.CreateUser(t, "first", "first@example.com")
	secondUID := factory.CreateUser(t, "second", "second@example.com")
	factory.CreateEdge(t, firstUID, channelUID)
	factory.CreateEdge(t, secondUID, channelUID)

	t.Run("subscribers in subscription order", func(t *testing.T) {
		got, err := storage.ListChannelSubscribers(context.Background(), channelUID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, firstUID, got[0].SubscriberUID)
		assert.Equal(t, "first", got[0].Username)
		assert.Equal(t, secondUID, got[1].SubscriberUID)
	})

	t.Run("channel without subscribers", func(t *testing.T) {
		got, err := storage.ListChannelSubscribers(context.Background(), firstUID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStorage_ListSubscribedChannels(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	viewerUID := factory.CreateUser(t, "viewer", "viewer@example.com")
	musicUID := factory.CreateUser(t, "music", "music@example.com")
	newsUID := factory.CreateUser(t, "news", "news@example.com")
	factory.CreateEdge(t, viewerUID, musicUID)
	factory.CreateEdge(t, viewerUID, newsUID)

	t.Run("channels in subscription order", func(t *testing.T) {
		got, err := storage.ListSubscribedChannels(context.Background(), viewerUID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, musicUID, got[0].ChannelUID)
		assert.Equal(t, "music", got[0].Username)
		assert.Equal(t, newsUID, got[1].ChannelUID)
	})

	t.Run("user without subscriptions", func(t *testing.T) {
		got, err := storage.ListSubscribedChannels(context.Background(), musicUID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStorage_GetChannelCounts(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	channelUID := factory.CreateUser(t, "channel", "channel@example.com")
	viewerUID := factory.CreateUser(t, "viewer", "viewer@example.com")
	otherUID := factory.CreateUser(t, "other", "other@example.com")
	factory.CreateEdge(t, viewerUID, channelUID)
	factory.CreateEdge(t, otherUID, channelUID)
	factory.CreateEdge(t, channelUID, otherUID)

	t.Run("counts both directions", func(t *testing.T) {
		subscribers, subscribedTo, err := storage.GetChannelCounts(context.Background(), channelUID)
		require.NoError(t, err)
		assert.Equal(t, 2, subscribers)
		assert.Equal(t, 1, subscribedTo)
	})

	t.Run("user without edges", func(t *testing.T) {
		uid := factory.CreateUser(t, "loner", "loner@example.com")
		subscribers, subscribedTo, err := storage.GetChannelCounts(context.Background(), uid)
		require.NoError(t, err)
		assert.Zero(t, subscribers)
		assert.Zero(t, subscribedTo)
	})
}
