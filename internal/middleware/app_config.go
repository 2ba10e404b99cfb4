package middleware

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"lanehub/config/domain"
	"lanehub/configs/controller"
	"lanehub/internal/exceptions"
)

type appConfigContextKey string

// PostingConfig holds the posting service registry from config.yaml.
const PostingConfig appConfigContextKey = "appConfig"

func GetAppConfig(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		config := domain.Config{}
		currentDir, err := os.Getwd()
		if err != nil {
			log.Fatalf("Failed to setup config: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(currentDir, "config.yaml"))
		if err != nil {
			exceptions.InternalErrorHandler(w, err)
			return
		}
		err = config.SetFromBytes(data)
		if err != nil {
			exceptions.InternalErrorHandler(w, err)
			return
		}
		c := controller.Controller{
			Config: &config,
		}
		result, err := c.Config.Get("service.registry.posting")
		if err != nil {
			exceptions.InternalErrorHandler(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), PostingConfig, result)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
