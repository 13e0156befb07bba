package statelock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idleState and busyState are test-only [State] implementations with
// nil-receiver-safe StateName, required by [AcquireTyped]/[AsConcrete]
// (see state.go and fixedNameState in box_test.go for why).
type idleState struct{ calls int }

func (*idleState) StateName() string { return "idle" }
func (*idleState) Family() string    { return "conn" }
func (s *idleState) TearDown()       {}

type busyState struct{}

func (*busyState) StateName() string { return "busy" }
func (*busyState) Family() string    { return "conn" }
func (*busyState) TearDown()         {}

func connCatalog() *Catalog {
	return NewCatalog(
		CatalogEntry{Family: "conn", Name: "idle", Factory: func() State { return &idleState{} }},
		CatalogEntry{Family: "conn", Name: "busy", Factory: func() State { return &busyState{} }},
	)
}

func TestAcquireTyped_RightType(t *testing.T) {
	lock := New("conn", WithCatalog(connCatalog()))

	g, err := AcquireTyped[idleState](lock)
	require.NoError(t, err)
	assert.Equal(t, "idle", g.Name())
	assert.Equal(t, "conn", g.Family())
	assert.NotNil(t, g.Value())

	g.Release()
	assert.Nil(t, lock.Current())
}

func TestIntoGuard_WrongTypeLeavesHandleToCaller(t *testing.T) {
	lock := New("conn", WithCatalog(connCatalog()))

	// acquire "busy" directly, then ask IntoGuard[idleState] to convert
	// it - the name mismatch must surface as a WrongCastError, and the
	// RawHandle keeps its reference, so releasing it is what clears the
	// live state.
	h, err := lock.Acquire("busy")
	require.NoError(t, err)

	_, err = IntoGuard[idleState](h)
	require.Error(t, err)
	var wrongCast *WrongCastError
	require.ErrorAs(t, err, &wrongCast)
	assert.Equal(t, "idle", wrongCast.Expected)
	assert.Equal(t, "busy", wrongCast.Actual)

	h.Release()
	assert.Nil(t, lock.Current())
}

func TestAsConcrete_ThroughPublicHandle(t *testing.T) {
	lock := New("conn", WithCatalog(connCatalog()))

	h, err := lock.Acquire("idle")
	require.NoError(t, err)
	defer h.Release()

	concrete, err := AsConcrete[idleState](h)
	require.NoError(t, err)
	assert.Equal(t, 0, concrete.calls)

	_, err = AsConcrete[busyState](h)
	require.Error(t, err)
	var wrongCast *WrongCastError
	require.ErrorAs(t, err, &wrongCast)
	assert.Equal(t, "busy", wrongCast.Expected)
	assert.Equal(t, "idle", wrongCast.Actual)
}

func TestRawHandle_AsDyn(t *testing.T) {
	lock := New("conn", WithCatalog(connCatalog()))

	h, err := lock.Acquire("idle")
	require.NoError(t, err)
	defer h.Release()

	dyn := h.AsDyn()
	require.NotNil(t, dyn)
	assert.Equal(t, "idle", dyn.StateName())

	_, ok := dyn.(*idleState)
	assert.True(t, ok)
}

func TestRawHandle_ReleaseIsIdempotent(t *testing.T) {
	lock := New("conn", WithCatalog(connCatalog()))

	h, err := lock.Acquire("idle")
	require.NoError(t, err)

	h.Release()
	h.Release()
	h.Release()

	assert.Nil(t, lock.Current())
}

func TestGuard_SharesUnderlyingInstance(t *testing.T) {
	lock := New("conn", WithCatalog(connCatalog()))

	g1, err := AcquireTyped[idleState](lock)
	require.NoError(t, err)

	g2, err := AcquireTyped[idleState](lock)
	require.NoError(t, err)

	g1.Value().calls++
	assert.Equal(t, 1, g2.Value().calls)
	assert.Same(t, g1.Value(), g2.Value())

	g1.Release()
	g2.Release()
}
