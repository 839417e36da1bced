package mock

import (
	"context"
	"net/url"

	"github.com/rs/zerolog/log"
	"gitlab.com/visitkit/visitk"
)

func MakeMockContext(ctx context.Context, target *url.URL) *visitk.Context {
	logger := log.With().
		Str("DEBUGURL", target.String()).
		Logger()
	vctx := visitk.NewContext(ctx, nil)
	vctx.Log = &logger
	return vctx
}

// MustParse for test urls
func MustParse(rawurl string) *url.URL {
	u, err := url.Parse(rawurl)
	if err != nil {
		panic(err)
	}
	return u
}
