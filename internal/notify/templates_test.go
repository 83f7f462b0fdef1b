package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "driverpro-notifier/internal/common/errors"
)

func TestResolveTemplate(t *testing.T) {
	tests := []struct {
		status      string
		wantSubject string
		wantErr     bool
	}{
		{status: "confirmed", wantSubject: "Course confirmée par votre chauffeur"},
		{status: "cancelled", wantSubject: "Annulation de votre course"},
		{status: "pending", wantErr: true},
		{status: "completed", wantErr: true},
		{status: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("status_"+tt.status, func(t *testing.T) {
			tmpl, err := ResolveTemplate(tt.status)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrCodeUnknownStatus, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, tmpl.Subject)
			assert.Equal(t, "driver_"+tt.status, tmpl.StatusKey)
			assert.NotEmpty(t, tmpl.TemplateID)
		})
	}
}
