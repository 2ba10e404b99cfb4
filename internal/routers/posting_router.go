package routers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"lanehub/internal/dependencies"
	"lanehub/internal/handlers"
	"lanehub/internal/middleware"
)

func PostingRouter() http.Handler {
	deps, err := dependencies.NewDependencies()
	if err != nil {
		log.Fatalf("dependency setup failed: %v", err)
	}

	middlewareStackForPosting := middleware.CreateStack(middleware.Recovery, middleware.CheckCORS,
		middleware.AddCorrelationID, middleware.AddHeaders, middleware.GetAppConfig, middleware.LaneValidation, middleware.Logging)
	middlewareStackForhc := middleware.CreateStack(middleware.Recovery, middleware.AddCorrelationID, middleware.AddHeaders, middleware.Logging)
	router := http.NewServeMux()
	//HealthCheck
	hc := middlewareStackForhc(handlers.HealthCheckHandler())
	//Posting generation + pre-flight audit
	ph := middlewareStackForPosting(handlers.PostingHandler(deps.CityRepo, deps.Assembler, deps.RedisDB))
	ah := middlewareStackForPosting(handlers.PostingAuditHandler(deps.CityRepo, deps.Assembler, deps.RedisDB))
	router.Handle("POST /postings", ph)
	router.Handle("POST /postings/audit", ah)
	router.Handle("GET /health", hc)
	return router
}
