package routes

import (
	"bookhaven/controllers"
	"bookhaven/middleware"
	"bookhaven/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every endpoint onto the engine.
func SetupRoutes(r *gin.Engine, ct *controllers.Controller) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	// Public auth routes
	r.POST("/register", ct.Register)
	r.POST("/login", ct.Login)
	r.POST("/admin/register", ct.AdminRegister)
	r.POST("/admin/login", ct.AdminLogin)

	// Public catalog
	r.GET("/books", ct.ListBooks)
	r.GET("/books/topseller", ct.ListByFlag("topseller"))
	r.GET("/books/upcoming", ct.ListByFlag("upcoming"))
	r.GET("/books/onsale", ct.ListByFlag("onsale"))
	r.GET("/books/newarrival", ct.ListByFlag("newarrival"))
	r.GET("/books/categories/:category", ct.ListByCategory)
	r.GET("/books/:bookid", ct.GetBook)

	// Authenticated user routes
	user := r.Group("/user", middlewares.Auth(ct.JWTSecret(), false))
	{
		user.GET("/info", ct.UserInfo)
		user.PUT("/edit", ct.EditUser)
		user.POST("/image", ct.UploadUserImage)
		user.DELETE("/image", ct.DeleteUserImage)

		user.GET("/favorites", ct.ListSet(services.SetFavorites))
		user.POST("/favorites/:bookid", ct.AddToSet(services.SetFavorites))
		user.DELETE("/favorites/:bookid", ct.RemoveFromSet(services.SetFavorites))

		user.GET("/bookmarks", ct.ListSet(services.SetBookmarks))
		user.POST("/bookmarks/:bookid", ct.AddToSet(services.SetBookmarks))
		user.DELETE("/bookmarks/:bookid", ct.RemoveFromSet(services.SetBookmarks))

		user.GET("/books", ct.ListSet(services.SetBooks))
		user.POST("/books", ct.PurchaseBooks)
		user.POST("/books/checkout", ct.CheckoutBookmarks)

		user.POST("/reviews/:bookid", ct.CreateReview)
		user.PUT("/reviews/:bookid", ct.EditReview)
		user.DELETE("/reviews/:bookid", ct.DeleteReview)

		user.GET("/recommendations", ct.Recommendations)
	}

	// Admin catalog management
	admin := r.Group("/admin", middlewares.Auth(ct.JWTSecret(), true))
	{
		admin.POST("/books", ct.CreateBook)
		admin.PUT("/books/:bookid", ct.EditBook)
		admin.DELETE("/books/:bookid", ct.DeleteBook)
		admin.PUT("/books/:bookid/discount", ct.SetDiscount)
		admin.DELETE("/books/:bookid/discount", ct.RemoveDiscount)
		admin.PUT("/books/:bookid/topseller", ct.ToggleFlag("topseller"))
		admin.PUT("/books/:bookid/newarrival", ct.ToggleFlag("newarrival"))
	}
}
