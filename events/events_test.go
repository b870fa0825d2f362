package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct{ msgs []*nats.Msg }

func (r *recordingConn) PublishMsg(m *nats.Msg) error {
	r.msgs = append(r.msgs, m)
	return nil
}

func TestNatsPublisher(t *testing.T) {
	conn := &recordingConn{}
	pub := NewNatsPublisher(conn, "")
	id, project := uuid.New(), uuid.New()

	require.NoError(t, pub.Publish(context.Background(), Change{Entity: EntityMedia, Action: MainSet, ID: id, ProjectID: project}))
	require.Len(t, conn.msgs, 1)

	msg := conn.msgs[0]
	assert.Equal(t, "portfolio.media.main_set", msg.Subject)
	assert.Equal(t, "application/json", msg.Header.Get("Content-Type"))

	var got Change
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, id, got.ID)
	assert.Equal(t, project, got.ProjectID)
	assert.False(t, got.At.IsZero())
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), Change{}))
}
