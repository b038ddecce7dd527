package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalType(t *testing.T) {
	tests := []struct {
		tag      string
		want     SectionType
		wantKnow bool
	}{
		{"warmup", SectionWarmup, true},
		{"Warm-Up", SectionWarmup, true},
		{"warm_up", SectionWarmup, true},
		{"Reading", SectionReading, true},
		{"grammar", SectionSentenceFrames, true},
		{"sentence frames", SectionSentenceFrames, true},
		{"speaking", SectionDiscussion, true},
		{"assessment", SectionQuiz, true},
		{"QUIZ", SectionQuiz, true},
		{"homework", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := CanonicalType(tt.tag)
			assert.Equal(t, tt.wantKnow, ok)
			if tt.wantKnow {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request Request
		wantErr bool
	}{
		{
			name: "valid request",
			request: Request{
				Topic:           "city life",
				Level:           LevelB1,
				Focus:           "urban vocabulary",
				DurationMinutes: 30,
			},
		},
		{
			name: "missing topic",
			request: Request{
				Level:           LevelB1,
				DurationMinutes: 30,
			},
			wantErr: true,
		},
		{
			name: "level outside the enum",
			request: Request{
				Topic:           "city life",
				Level:           Level("D1"),
				DurationMinutes: 30,
			},
			wantErr: true,
		},
		{
			name: "non-positive duration",
			request: Request{
				Topic:           "city life",
				Level:           LevelB1,
				DurationMinutes: 0,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDocument_Section(t *testing.T) {
	doc := &Document{
		Sections: []Section{
			{Type: "grammar"},
			{Type: string(SectionReading)},
		},
	}

	require.NotNil(t, doc.Section(SectionSentenceFrames))
	assert.Equal(t, "grammar", doc.Section(SectionSentenceFrames).Type)
	require.NotNil(t, doc.Section(SectionReading))
	assert.Nil(t, doc.Section(SectionQuiz))
}

func TestLevels_Order(t *testing.T) {
	assert.Equal(t, []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}, Levels())
}
