package repomanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	m, err := Open(context.Background(), Options{Driver: DriverMemory})
	require.NoError(t, err)
	require.NoError(t, m.Prepare(context.Background()))

	assert.NotNil(t, m.Users())
	assert.NotNil(t, m.Edges())
	assert.Same(t, m.Users(), m.Edges(), "memory manager shares one store")
	require.NoError(t, m.Close(context.Background()))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "cassandra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}
