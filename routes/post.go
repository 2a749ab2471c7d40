package routes

import (
	"github.com/gorilla/mux"
	"masterboxer.com/project-newsfeed/auth"
	"masterboxer.com/project-newsfeed/handlers"
)

func CreatePostRoutes(posts handlers.Posts, issuer *auth.Issuer, limits handlers.UploadLimits, router *mux.Router) *mux.Router {
	router.Handle("/newPosts", issuer.RequireUser(handlers.CreatePost(posts, limits))).Methods("POST")
	router.HandleFunc("/getPosts/user/{owner_id}", handlers.GetPostsByOwner(posts)).Methods("GET")
	router.HandleFunc("/getPosts/{post_id}", handlers.GetPost(posts)).Methods("GET")
	router.Handle("/deletePosts/{post_id}", issuer.RequireUser(handlers.DeletePost(posts))).Methods("DELETE")

	return router
}
