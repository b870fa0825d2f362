package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the public, sign-in and admin routes
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/health", handlers.healthHandler.health())

		// Public results page
		r.Get("/portfolio/projects", handlers.portfolioHandler.listProjects())
		r.Get("/portfolio/projects/{slug}", handlers.portfolioHandler.getProject())
		r.Get("/portfolio/testimonials", handlers.portfolioHandler.testimonials())
		r.Post("/contact", handlers.contactHandler.submit())

		// Sign-in
		r.Post("/auth/password", handlers.authHandler.signInWithPassword())
		r.Post("/auth/magic-link", handlers.authHandler.sendMagicLink())
		r.Post("/auth/magic-link/verify", handlers.authHandler.verifyMagicLink())
		r.Get("/auth/session", handlers.authHandler.session())
		r.Post("/auth/sign-out", handlers.authHandler.signOut())

		// Admin console
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Get("/projects", handlers.projectHandler.getAllProjects())
			r.Post("/projects", handlers.projectHandler.createProject())
			r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
			r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())

			r.Post("/projects/{projectID}/media", handlers.mediaHandler.upload())
			r.Post("/projects/{projectID}/videos", handlers.mediaHandler.addVideoLink())
			r.Put("/projects/{projectID}/media/order", handlers.mediaHandler.reorder())
			r.Put("/media/{mediaID}", handlers.mediaHandler.updateDetails())
			r.Post("/media/{mediaID}/main", handlers.mediaHandler.setMain())
			r.Delete("/media/{mediaID}", handlers.mediaHandler.deleteMedia())

			r.Get("/testimonials", handlers.testimonialHandler.getAll())
			r.Post("/testimonials", handlers.testimonialHandler.create())
			r.Put("/testimonials/{testimonialID}", handlers.testimonialHandler.update())
			r.Delete("/testimonials/{testimonialID}", handlers.testimonialHandler.delete())
			r.Post("/testimonials/{testimonialID}/featured", handlers.testimonialHandler.toggleFeatured())

			r.Get("/session/events", handlers.authHandler.sessionEvents())
		})
	})
}
