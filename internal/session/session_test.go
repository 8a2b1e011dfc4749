package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"eco-dashboard/internal/domain"
	"eco-dashboard/internal/store"

	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value string, _ time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) Del(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func TestEstablishAndLoad(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newFakeKV(), time.Hour)

	org := &domain.Organization{ID: 7, Name: "Acme Energía"}
	token, err := m.Establish(ctx, org)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sess, err := m.Load(ctx, token)
	require.NoError(t, err)
	require.Equal(t, int64(7), sess.OrganizationID)
	require.Equal(t, "Acme Energía", sess.OrganizationName)
	require.True(t, sess.IsLoggedIn)
}

func TestLoadUnknownTokenIsUnauthorized(t *testing.T) {
	m := NewManager(newFakeKV(), time.Hour)

	_, err := m.Load(context.Background(), "no-such-token")
	require.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = m.Load(context.Background(), "")
	require.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestTerminateClearsAllStateAtomically(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	m := NewManager(kv, time.Hour)

	token, err := m.Establish(ctx, &domain.Organization{ID: 3, Name: "Org"})
	require.NoError(t, err)

	require.NoError(t, m.Terminate(ctx, token))
	// The whole record lives under one key: nothing remains.
	require.Empty(t, kv.data)

	_, err = m.Load(ctx, token)
	require.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestTerminateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newFakeKV(), time.Hour)

	require.NoError(t, m.Terminate(ctx, "never-existed"))
	require.NoError(t, m.Terminate(ctx, ""))
}
