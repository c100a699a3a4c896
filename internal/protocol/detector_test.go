package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(t *testing.T, d *boundaryDetector, chunks ...string) error {
	t.Helper()
	for _, chunk := range chunks {
		if err := d.feed([]byte(chunk)); err != nil {
			return err
		}
	}
	return nil
}

func TestDetectorBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []string
		reached bool
	}{
		{
			name:    "self closing root",
			chunks:  []string{`<get_version_response status="200"/>`},
			reached: true,
		},
		{
			name:    "split start tag",
			chunks:  []string{`<get_version_resp`, `onse status="2`, `00">`, `</get_version_response>`},
			reached: true,
		},
		{
			name:    "open root only",
			chunks:  []string{`<get_tasks_response status="200"><task id="1">`},
			reached: false,
		},
		{
			name:    "inner elements closed",
			chunks:  []string{`<r><a/><b>x</b>`},
			reached: false,
		},
		{
			name:    "declaration and whitespace before root",
			chunks:  []string{"<?xml version=\"1.0\"?>\n  ", `<r/>`},
			reached: true,
		},
		{
			name:    "split entity",
			chunks:  []string{`<r>fish &am`, `p; chips</r>`},
			reached: true,
		},
		{
			name:    "split CDATA",
			chunks:  []string{`<r><![CDA`, `TA[</r> is not a tag]`, `]></r>`},
			reached: true,
		},
		{
			name:    "split comment",
			chunks:  []string{`<r><!-`, `- </r> -`, `-></r>`},
			reached: true,
		},
		{
			name:    "split multi-byte rune",
			chunks:  []string{"<r>\xe2\x82", "\xac</r>"},
			reached: true,
		},
		{
			name:    "namespaced root",
			chunks:  []string{`<gmp:r xmlns:gmp="urn:x"><gmp:a/>`, `</gmp:r>`},
			reached: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newBoundaryDetector()
			require.NoError(t, feedAll(t, d, tt.chunks...))
			assert.Equal(t, tt.reached, d.endReached())
		})
	}
}

func TestDetectorMalformed(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []string
		message string
	}{
		{
			name:    "mismatched end tag",
			chunks:  []string{`<a><b></a>`},
			message: "element <b> closed by </a>",
		},
		{
			name:    "end tag without start",
			chunks:  []string{`</a>`},
			message: "unexpected end element </a>",
		},
		{
			name:    "text before root",
			chunks:  []string{`hello <a/>`},
			message: "character data before root element",
		},
		{
			name:   "tag inside tag",
			chunks: []string{`<garbage`, `<nonsense`},
		},
		{
			name:   "unknown entity",
			chunks: []string{`<a>&bogus;</a>`},
		},
		{
			name:   "invalid UTF-8",
			chunks: []string{"<a>\xff\xfe</a>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newBoundaryDetector()
			err := feedAll(t, d, tt.chunks...)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, []byte(tt.chunks[len(tt.chunks)-1]), parseErr.Chunk)
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
			assert.False(t, d.endReached())
		})
	}
}

func TestDetectorIgnoresBytesAfterBoundary(t *testing.T) {
	d := newBoundaryDetector()
	require.NoError(t, d.feed([]byte(`<a/><<<not xml`)))
	assert.True(t, d.endReached())
	require.NoError(t, d.feed([]byte(`</b>`)))
	assert.True(t, d.endReached())
}

func TestDetectorDropsConsumedBytes(t *testing.T) {
	d := newBoundaryDetector()
	require.NoError(t, d.feed([]byte(`<report status="200"><content>`)))

	text := strings.Repeat("x", 64*1024)
	for i := 0; i < 64; i++ {
		require.NoError(t, d.feed([]byte(text)))
		assert.Less(t, len(d.pending), len(text), "consumed text must not accumulate")
	}

	require.NoError(t, d.feed([]byte(`</content></report>`)))
	assert.True(t, d.endReached())
	assert.Equal(t, int64(len(`<report status="200"><content>`)+64*len(text)+len(`</content></report>`)), d.consumed)
}

func TestDetectorLargeTokensAreScannedOnce(t *testing.T) {
	const chunkSize = 32 * 1024
	body := strings.Repeat("a < b & 'c' > \"d\" ", 4*1024*1024/20)

	tests := []struct {
		name  string
		open  string
		close string
	}{
		{name: "cdata", open: `<![CDATA[`, close: `]]>`},
		{name: "comment", open: `<!--`, close: `-->`},
		{name: "processing instruction", open: `<?report `, close: `?>`},
		{name: "start tag", open: `<data value='`, close: `'>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := body
			if tt.name == "comment" {
				content = strings.ReplaceAll(body, "-", "")
			}
			if tt.name == "start tag" {
				content = strings.NewReplacer("<", "", "&", "", "'", "").Replace(body)
			}
			reply := `<get_reports_response status="200"><report>` + tt.open + content + tt.close
			if tt.name == "start tag" {
				reply += `</data>`
			}
			reply += `</report></get_reports_response>`

			d := newBoundaryDetector()
			for start := 0; start < len(reply); start += chunkSize {
				end := min(start+chunkSize, len(reply))
				require.NoError(t, d.feed([]byte(reply[start:end])))
			}

			assert.True(t, d.endReached())
			assert.Less(t, d.decoded, int64(3*len(reply)), "large token retokenized on every chunk")
		})
	}
}

func TestDetectorTagWithQuotedGreaterThan(t *testing.T) {
	d := newBoundaryDetector()
	require.NoError(t, feedAll(t, d, `<a><b x="1 >`, ` 2">`, `</b></a>`))
	assert.True(t, d.endReached())
}

func TestDetectorTokenKindSplitEarly(t *testing.T) {
	// The kind of the partial token is unknown until enough bytes arrive.
	for _, chunks := range [][]string{
		{`<a><`, `![CDATA[x]]></a>`},
		{`<a><!`, `-- c --></a>`},
		{`<a><![CDA`, `TA[</a>]]></a>`},
		{`<a><`, `/a>`},
	} {
		d := newBoundaryDetector()
		require.NoError(t, feedAll(t, d, chunks...), chunks)
		assert.True(t, d.endReached(), chunks)
	}
}

func TestDetectorOffsetInParseError(t *testing.T) {
	d := newBoundaryDetector()
	require.NoError(t, d.feed([]byte(`<a>0123456789`)))

	err := d.feed([]byte(`</b>`))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.GreaterOrEqual(t, parseErr.Offset, int64(len(`<a>0123456789`)))
}

func TestIncompleteRuneTail(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected int
	}{
		{"empty", nil, 0},
		{"ascii", []byte("abc"), 0},
		{"complete two byte", []byte("ü"), 0},
		{"first byte of two", []byte("a\xc3"), 1},
		{"two of three", []byte("a\xe2\x82"), 2},
		{"three of four", []byte("\xf0\x9f\x98"), 3},
		{"complete four byte", []byte("😀"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, incompleteRuneTail(tt.input))
		})
	}
}
