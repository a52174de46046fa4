package pubdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestResolvePrefersTimeDatetime(t *testing.T) {
	doc := &Document{HTML: `<html><head>
		<meta property="article:published_time" content="2023-05-01T00:00:00Z">
		</head><body><time datetime="2024-01-02T08:00:00Z">2 Jan</time></body></html>`}

	got, strategy, ok := NewResolver(clock).Resolve(doc)

	require.True(t, ok)
	assert.Equal(t, "time_datetime", strategy)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), got)
}

func TestResolveFallsThroughUnparseableCandidates(t *testing.T) {
	doc := &Document{HTML: `<html><head>
		<meta name="pubdate" content="2024-01-01T10:00:00+02:00">
		</head><body><time datetime="soon">later</time></body></html>`}

	got, strategy, ok := NewResolver(clock).Resolve(doc)

	require.True(t, ok)
	assert.Equal(t, "meta", strategy)
	assert.Equal(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), got, "offsets are normalized to UTC")
}

func TestResolveTimeText(t *testing.T) {
	doc := &Document{HTML: `<html><body><time>January 2, 2024</time></body></html>`}

	got, strategy, ok := NewResolver(clock).Resolve(doc)

	require.True(t, ok)
	assert.Equal(t, "time_text", strategy)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestResolveTextOnly(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"iso date", "Breaking\nPublished 2024-01-02 by staff", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"relative hours", "Posted 3 hours ago by staff", fixedNow.Add(-3 * time.Hour)},
		{"earliest phrase wins", "2 days ago. Originally filed 2023-12-01.", fixedNow.Add(-48 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy, ok := NewResolver(clock).Resolve(&Document{Text: tt.text})
			require.True(t, ok)
			assert.Equal(t, "text", strategy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveUkrainianPages(t *testing.T) {
	t.Run("time text", func(t *testing.T) {
		doc := &Document{
			HTML: `<html><body><time>2 січня 2023</time><p>Новина дня</p></body></html>`,
			Text: "Новина дня\nУряд ухвалив рішення.",
		}

		got, strategy, ok := NewResolver(clock).Resolve(doc)

		require.True(t, ok)
		assert.Equal(t, "time_text", strategy)
		assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("body text", func(t *testing.T) {
		tests := []struct {
			text string
			want time.Time
		}{
			{"Новина дня\n12 жовтня 2023, 14:30\nУряд ухвалив рішення.", time.Date(2023, 10, 12, 14, 30, 0, 0, time.UTC)},
			{"Новина дня\nОновлено 3 години тому", fixedNow.Add(-3 * time.Hour)},
		}
		for _, tt := range tests {
			got, strategy, ok := NewResolver(clock).Resolve(&Document{Text: tt.text})
			require.True(t, ok, tt.text)
			assert.Equal(t, "text", strategy)
			assert.Equal(t, tt.want, got)
		}
	})
}

func TestTextScanRespectsLimit(t *testing.T) {
	text := make([]rune, 0, 2100)
	for i := 0; i < 2050; i++ {
		text = append(text, 'x')
	}
	doc := &Document{Text: string(text) + " 2024-01-02"}

	assert.Empty(t, TextScan{Limit: 2000}.Candidates(doc))
	assert.Equal(t, []string{"2024-01-02"}, TextScan{}.Candidates(doc))
}

func TestResolveNoSignal(t *testing.T) {
	_, _, ok := NewResolver(clock).Resolve(&Document{})
	assert.False(t, ok)

	_, _, ok = NewResolver(clock).Resolve(&Document{HTML: "<p>No dates here</p>", Text: "No dates here"})
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-01-02T15:04:05Z", want: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{in: "2024-01-02 15:04:05", want: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{in: "Tue, 02 Jan 2024 15:04:05 GMT", want: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{in: "yesterday", want: fixedNow.Add(-24 * time.Hour)},
		{in: "Updated today", want: fixedNow},
		{in: "45 minutes ago", want: fixedNow.Add(-45 * time.Minute)},
		{in: "12 жовтня 2023, 14:30", want: time.Date(2023, 10, 12, 14, 30, 0, 0, time.UTC)},
		{in: "Опубліковано 2 січня 2024 р.", want: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{in: "5 бер. 2024 о 09:15", want: time.Date(2024, 3, 5, 9, 15, 0, 0, time.UTC)},
		{in: "3 години тому", want: fixedNow.Add(-3 * time.Hour)},
		{in: "15 хв тому", want: fixedNow.Add(-15 * time.Minute)},
		{in: "2 дні тому", want: fixedNow.Add(-48 * time.Hour)},
		{in: "1 тиждень тому", want: fixedNow.Add(-7 * 24 * time.Hour)},
		{in: "сьогодні", want: fixedNow},
		{in: "Вчора", want: fixedNow.Add(-24 * time.Hour)},
		{in: "вчора, 18:05", want: time.Date(2024, 1, 2, 18, 5, 0, 0, time.UTC)},
		{in: "31 лютого 2024", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "not a date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in, fixedNow)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}
