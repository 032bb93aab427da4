package mock

import (
	"context"
	"testing"

	"github.com/poiesic/venuefinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEncoder_StemSimilarity(t *testing.T) {
	enc := NewMockEncoder()
	ctx := context.Background()

	vecs, err := enc.EmbedTexts(ctx, []string{
		"вкусный кофе",
		"Очень вкусное кофе!",
		"шиномонтаж круглосуточно",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	for _, v := range vecs {
		assert.Len(t, v, DefaultDim)
		assert.True(t, core.IsNormalized(v, 1e-5))
	}

	related := core.Dot(vecs[0], vecs[1])
	unrelated := core.Dot(vecs[0], vecs[2])
	assert.Greater(t, related, float32(0.9))
	assert.Greater(t, related, unrelated)
	assert.Equal(t, 1, enc.CallCount())
	assert.Len(t, enc.EmbeddedTexts(), 3)
}

func TestMockEncoder_Deterministic(t *testing.T) {
	a := StemVector("уютная кофейня", 32)
	b := StemVector("уютная кофейня", 32)
	assert.Equal(t, a, b)

	empty := StemVector("", 32)
	assert.True(t, core.IsNormalized(empty, 1e-5))
}

func TestMockEncoder_Injection(t *testing.T) {
	enc := NewMockEncoder()
	enc.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, core.ErrModel
	}

	_, err := enc.EmbedText(context.Background(), "x")
	assert.ErrorIs(t, err, core.ErrModel)

	enc.Reset()
	assert.Zero(t, enc.CallCount())
	assert.Empty(t, enc.EmbeddedTexts())
	_, err = enc.EmbedText(context.Background(), "x")
	assert.NoError(t, err)
}

func TestLexiconSentiment(t *testing.T) {
	tests := []struct {
		text string
		want core.SentimentLabel
	}{
		{"Отличное место, очень вкусно!", core.SentimentPositive},
		{"Ужасное обслуживание, грязно", core.SentimentNegative},
		{"Не рекомендую", core.SentimentNegative},
		{"Было невкусно", core.SentimentNegative},
		{"Работает до 22:00", core.SentimentNeutral},
		{"Керемет орын", core.SentimentPositive},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := LexiconSentiment(tt.text)
			assert.Equal(t, tt.want, got.Label)
			assert.GreaterOrEqual(t, got.Confidence, float32(0))
			assert.LessOrEqual(t, got.Confidence, float32(1))
		})
	}
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	mp := p.(*MockProvider)

	s, err := p.SentimentScorer().Score(context.Background(), "прекрасный кофе")
	require.NoError(t, err)
	assert.Equal(t, core.SentimentPositive, s.Label)
	assert.Equal(t, 1, mp.GetMockScorer().CallCount())
	assert.Equal(t, "mock-encoder", p.Encoder().ModelName())

	require.NoError(t, p.Close())
	assert.True(t, mp.Closed())
}
