package catalog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertClientDuplicateName(t *testing.T) {
	cat := New()
	require.NoError(t, cat.InsertClient(Client{ID: ClientID{1}, Name: "alice"}))
	err := cat.InsertClient(Client{ID: ClientID{2}, Name: "alice"})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestSetKeysAtomicity(t *testing.T) {
	cat := New()
	id := ClientID{1}
	require.NoError(t, cat.InsertClient(Client{ID: id, Name: "alice"}))

	require.NoError(t, cat.SetKeys(id, []byte("pub"), []byte("0123456789abcdef")))
	client, ok := cat.GetClient(id)
	require.True(t, ok)
	assert.Equal(t, []byte("pub"), client.PublicKey)
	assert.Equal(t, []byte("0123456789abcdef"), client.AESKey)
	assert.True(t, client.HasKeys())
}

func TestSetKeysUnknownClient(t *testing.T) {
	cat := New()
	err := cat.SetKeys(ClientID{9}, []byte("pub"), []byte("key"))
	assert.ErrorIs(t, err, ErrUnknownClient)
}

func TestGetAESKeyUnknownClient(t *testing.T) {
	cat := New()
	_, err := cat.GetAESKey(ClientID{9})
	assert.ErrorIs(t, err, ErrUnknownClient)
}

func TestInsertFileIdempotent(t *testing.T) {
	cat := New()
	id := ClientID{1}
	file := File{OwnerID: id, FileName: "notes.txt", PathName: "./storage/notes.txt"}
	require.NoError(t, cat.InsertFile(file))
	require.NoError(t, cat.InsertFile(File{OwnerID: id, FileName: "notes.txt", PathName: "different/path"}))

	_, files := cat.Snapshot()
	require.Len(t, files, 1)
	assert.Equal(t, "./storage/notes.txt", files[0].PathName)
}

func TestMarkFileVerifiedUnknownFile(t *testing.T) {
	cat := New()
	err := cat.MarkFileVerified(ClientID{1}, "ghost.txt", true)
	assert.ErrorIs(t, err, ErrUnknownFile)
}

func TestMarkFileVerified(t *testing.T) {
	cat := New()
	id := ClientID{1}
	require.NoError(t, cat.InsertFile(File{OwnerID: id, FileName: "notes.txt"}))
	require.NoError(t, cat.MarkFileVerified(id, "notes.txt", true))

	_, files := cat.Snapshot()
	require.Len(t, files, 1)
	assert.True(t, files[0].Verified)
}

func TestConcurrentRegistrationsSameNameOnlyOneSucceeds(t *testing.T) {
	cat := New()
	const attempts = 50
	var wg sync.WaitGroup
	successes := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var id ClientID
			id[0] = byte(i)
			err := cat.InsertClient(Client{ID: id, Name: "racer"})
			successes <- err == nil
		}(i)
	}
	wg.Wait()
	close(successes)

	successCount := 0
	for ok := range successes {
		if ok {
			successCount++
		}
	}
	assert.Equal(t, 1, successCount)
}
