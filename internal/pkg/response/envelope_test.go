package response

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID int64 `json:"id"`
}

func TestDecode_Success(t *testing.T) {
	env, err := Decode[record]([]byte(`{"success":true,"data":{"id":7}}`))
	require.NoError(t, err)

	assert.True(t, env.Success)
	require.NotNil(t, env.Data)
	assert.Equal(t, int64(7), env.Data.ID)

	got, err := env.Require()
	require.NoError(t, err)
	assert.Equal(t, record{ID: 7}, got)
}

func TestDecode_ListWithCount(t *testing.T) {
	env, err := Decode[[]record]([]byte(`{"success":true,"data":[{"id":1},{"id":2}],"count":2}`))
	require.NoError(t, err)

	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
	assert.Len(t, *env.Data, 2)
}

func TestDecode_RejectsMismatchedShape(t *testing.T) {
	_, err := Decode[record]([]byte(`{"success":true,"data":[1,2,3]}`))
	assert.ErrorIs(t, err, ErrEnvelopeShape)

	_, err = Decode[record]([]byte(`{"success":"yes"}`))
	assert.ErrorIs(t, err, ErrEnvelopeShape)
}

func TestDecode_RejectsFailedEnvelopeWithData(t *testing.T) {
	_, err := Decode[record]([]byte(`{"success":false,"data":{"id":1}}`))
	assert.ErrorIs(t, err, ErrEnvelopeShape)
}

func TestRequire_MissingData(t *testing.T) {
	env, err := Decode[record]([]byte(`{"success":true}`))
	require.NoError(t, err)

	_, err = env.Require()
	assert.ErrorIs(t, err, ErrMissingData)

	env, err = Decode[record]([]byte(`{"success":false,"message":"No movies"}`))
	require.NoError(t, err)

	_, err = env.Require()
	assert.ErrorIs(t, err, ErrMissingData)
	assert.Contains(t, err.Error(), "No movies")
}

type account struct {
	ID int64 `json:"id"`
}

func (a account) Validate() error {
	if a.ID <= 0 {
		return errors.New("no id")
	}
	return nil
}

func TestDecode_RejectsUnrelatedObject(t *testing.T) {
	_, err := Decode[account]([]byte(`{"success":true,"data":{"foo":1}}`))
	assert.ErrorIs(t, err, ErrEnvelopeShape)

	_, err = Decode[[]account]([]byte(`{"success":true,"data":[{"id":1},{"foo":1}]}`))
	assert.ErrorIs(t, err, ErrEnvelopeShape)

	env, err := Decode[[]account]([]byte(`{"success":true,"data":[{"id":1},{"id":2}]}`))
	require.NoError(t, err)
	assert.Len(t, *env.Data, 2)

	env, err = Decode[[]account]([]byte(`{"success":true,"data":[]}`))
	require.NoError(t, err)
	assert.Empty(t, *env.Data)
}
