package server

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/completecity/petryk/internal/ai"
	"github.com/completecity/petryk/internal/database"
	"github.com/completecity/petryk/internal/mailer"
	"github.com/completecity/petryk/internal/server/middlewares"
	"github.com/completecity/petryk/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// A Controller is an Inversion Of Control pattern used to init the server package.
// All external clients are injected at process start, there are no package globals.
type Controller struct {
	Version     string
	Database    database.Client
	Storage     *storage.S3
	Commentator *ai.Commentator
	Describer   *ai.Describer
	Mailer      *mailer.Mailer
	// PresignExpiry is the lifetime of presigned upload URLs.
	PresignExpiry time.Duration
}

// EchoEngine instantiates the web server.
func EchoEngine(ctrl Controller) *echo.Echo {
	engine := echo.New()
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"*"},
		AllowHeaders: []string{"*"},
	}))
	engine.Use(middleware.Gzip())

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
	}))
	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler

	if ctrl.PresignExpiry == 0 {
		ctrl.PresignExpiry = time.Hour
	}

	////////////
	// Router //
	////////////

	router := engine.Group("")

	// generic handlers
	//
	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})

	//
	// item handlers
	//
	item := &item{
		db:          ctrl.Database,
		commentator: ctrl.Commentator,
		mailer:      ctrl.Mailer,
	}
	router.POST("/data", item.Create)
	router.GET("/data", item.List)
	router.GET("/data/:id", item.Get)
	router.PUT("/data/:id", item.Update)
	router.DELETE("/data/:id", item.Delete)

	//
	// upload handlers
	//
	upload := &upload{
		db:        ctrl.Database,
		store:     ctrl.Storage,
		describer: ctrl.Describer,
		expiry:    ctrl.PresignExpiry,
	}
	router.POST("/upload/presign", upload.Presign)
	router.POST("/upload/complete", upload.Complete)
	router.GET("/files", upload.List)

	return engine
}

// PrintRoutes prints the Echo engine exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}
