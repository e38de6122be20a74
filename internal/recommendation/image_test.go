package recommendation_test

import (
	"testing"

	"github.com/FreakyLetsFail/uni-swipe/internal/recommendation"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestImageResolver_PlaceholderRotation(t *testing.T) {
	r := recommendation.NewImageResolver(recommendation.ImageConfig{}, nil)

	assert.Equal(t, "/placeholder-uni-1.jpg", r.Placeholder(0))
	assert.Equal(t, "/placeholder-uni-2.jpg", r.Placeholder(1))
	assert.Equal(t, "/placeholder-uni-3.jpg", r.Placeholder(2))
	assert.Equal(t, "/placeholder-uni-1.jpg", r.Placeholder(3))
	assert.Equal(t, "/placeholder-uni-2.jpg", r.Placeholder(-2))
}

func TestImageResolver_CustomConfig(t *testing.T) {
	r := recommendation.NewImageResolver(recommendation.ImageConfig{
		Placeholders:    []string{"/a.png", " ", "/b.png"},
		Sentinels:       []string{"PLACEHOLD.IT"},
		FaviconTemplate: "https://icons.test/%s.ico",
	}, zap.NewNop())

	assert.Equal(t, "/b.png", r.Placeholder(1))
	assert.Equal(t, "https://icons.test/uni.de.ico",
		r.Resolve(recommendation.University{ID: 1, ImageURL: "http://placehold.it/300", WebsiteURL: "https://uni.de"}))
	assert.Equal(t, "/a.png",
		r.Resolve(recommendation.University{ID: 2, ImageURL: "https://www.example.com/x.jpg"}))
}

func TestImageResolver_LogsUnparseableWebsite(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := recommendation.NewImageResolver(recommendation.ImageConfig{}, zap.New(core))

	got := r.Resolve(recommendation.University{ID: 5, WebsiteURL: "http://[::1"})

	assert.Equal(t, "/placeholder-uni-3.jpg", got)
	assert.Equal(t, 1, logs.FilterMessage("Ignoring unparseable university website").Len())
}

func TestImageResolver_BlankWebsiteIsSilent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := recommendation.NewImageResolver(recommendation.ImageConfig{}, zap.New(core))

	assert.Equal(t, "/placeholder-uni-1.jpg", r.Resolve(recommendation.University{ID: 3}))
	assert.Zero(t, logs.Len())
}
