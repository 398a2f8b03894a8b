package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes собирает API задач; requireAuth оборачивает всё, кроме выдачи токена и health
func Routes(tasks *TaskHandler, auth *AuthHandler, requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", tasks.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/get-token", auth.GetToken)
		r.Post("/auth/get-token/", auth.GetToken)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/todos/", tasks.ListTasks) // GET /api/todos/
			r.Post("/todos/", tasks.PostTask)  // POST /api/todos/

			r.Patch("/todos/{id}/", tasks.PatchTask)   // PATCH /api/todos/{id}/
			r.Delete("/todos/{id}/", tasks.DeleteTask) // DELETE /api/todos/{id}/
		})
	})

	return r
}
