package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		operationType string
		wantKind      ChangeKind
		wantOK        bool
	}{
		{"insert", ChangeAdded, true},
		{"update", ChangeModified, true},
		{"replace", ChangeModified, true},
		{"delete", ChangeRemoved, true},
		{"invalidate", "", false},
		{"drop", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.operationType, func(t *testing.T) {
			kind, ok := kindOf(tt.operationType)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestBuildPipeline(t *testing.T) {
	pipeline := buildPipeline(Filter{
		Field:    "status",
		Operator: "in",
		Values:   []string{"confirmed", "cancelled"},
	})

	require.Len(t, pipeline, 1)

	stage := pipeline[0]
	require.Len(t, stage, 1)
	assert.Equal(t, "$match", stage[0].Key)

	match, ok := stage[0].Value.(bson.D)
	require.True(t, ok)
	require.Len(t, match, 2)

	assert.Equal(t, "operationType", match[0].Key)
	assert.Equal(t, "fullDocument.status", match[1].Key)

	statusCond, ok := match[1].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, "$in", statusCond[0].Key)
	assert.Equal(t, bson.A{"confirmed", "cancelled"}, statusCond[0].Value)
}
