package v1

import (
	"net/http"
	"strconv"

	"go-intake-backend/internal/delivery/http/middleware"
	"go-intake-backend/internal/delivery/http/response"
	"go-intake-backend/internal/domain"
	"go-intake-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const (
	homePath           = "/home"
	signupPath         = "/signup"
	postNewPath        = "/posts/new"
	passwordChangePath = "/password/change"
)

type PageHandler struct {
	identityUC domain.IdentityUsecase
	postUC     domain.PostUsecase
	session    sessionWriter
}

// NewPageHandler registers the form-driven routes. public carries no auth;
// pages redirects anonymous visitors to /login. credentialLimit only wraps
// the login and signup submissions.
func NewPageHandler(public, pages *gin.RouterGroup, identityUC domain.IdentityUsecase, postUC domain.PostUsecase, session sessionWriter, credentialLimit gin.HandlerFunc) {
	handler := &PageHandler{
		identityUC: identityUC,
		postUC:     postUC,
		session:    session,
	}

	public.GET(signupPath, handler.SignupForm)
	public.POST(signupPath, credentialLimit, handler.Signup)
	public.GET(middleware.LoginPath, handler.LoginForm)
	public.POST(middleware.LoginPath, credentialLimit, handler.Login)
	public.POST("/logout", handler.Logout)

	pages.GET(homePath, handler.Home)
	pages.POST(passwordChangePath, handler.ChangePassword)

	posts := pages.Group("", middleware.RequireCapability(domain.CapabilityCreatePost))
	{
		posts.GET(postNewPath, handler.NewPostForm)
		posts.POST(postNewPath, handler.CreatePost)
	}
}

func signupForm(values interface{}) response.FormPage {
	return response.FormPage{
		Name:   "signup",
		Action: signupPath,
		Method: http.MethodPost,
		Fields: []string{"email", "name", "password1", "password2"},
		Values: values,
	}
}

func loginForm(values interface{}) response.FormPage {
	return response.FormPage{
		Name:   "login",
		Action: middleware.LoginPath,
		Method: http.MethodPost,
		Fields: []string{"email", "password"},
		Values: values,
	}
}

func postForm(values interface{}) response.FormPage {
	return response.FormPage{
		Name:   "post",
		Action: postNewPath,
		Method: http.MethodPost,
		Fields: []string{"title", "description"},
		Values: values,
	}
}

// SignupForm godoc
// @Summary      Signup form
// @Tags         pages
// @Produce      json
// @Success      200  {object}  response.Response{data=response.FormPage}
// @Router       /signup [get]
func (h *PageHandler) SignupForm(c *gin.Context) {
	response.Form(c, http.StatusOK, "Create an account", signupForm(nil))
}

// Signup godoc
// @Summary      Register with email and password
// @Description  Creates an identity, establishes a session and redirects to /home
// @Tags         pages
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email      formData  string  true   "Email"
// @Param        name       formData  string  false  "Name"
// @Param        password1  formData  string  true   "Password"
// @Param        password2  formData  string  true   "Password confirmation"
// @Success      303
// @Failure      422  {object}  response.Response{data=response.FormPage}
// @Router       /signup [post]
func (h *PageHandler) Signup(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		redisplay(c, signupForm(nil), apperror.BadRequest("Invalid form submission"))
		return
	}

	values := gin.H{"email": req.Email, "name": req.Name}
	identity, err := h.identityUC.Register(c.Request.Context(), req)
	if err != nil {
		redisplay(c, signupForm(values), err)
		return
	}

	if err := h.session.establish(c, identity); err != nil {
		c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, homePath)
}

// LoginForm godoc
// @Summary      Login form
// @Tags         pages
// @Produce      json
// @Success      200  {object}  response.Response{data=response.FormPage}
// @Router       /login [get]
func (h *PageHandler) LoginForm(c *gin.Context) {
	if middleware.CurrentIdentity(c) != nil {
		c.Redirect(http.StatusFound, homePath)
		return
	}
	response.Form(c, http.StatusOK, "Sign in", loginForm(gin.H{"next": c.Query("next")}))
}

// Login godoc
// @Summary      Log in
// @Tags         pages
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email     formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Success      303
// @Failure      401  {object}  response.Response{data=response.FormPage}
// @Failure      422  {object}  response.Response{data=response.FormPage}
// @Router       /login [post]
func (h *PageHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		redisplay(c, loginForm(nil), apperror.BadRequest("Invalid form submission"))
		return
	}

	values := gin.H{"email": req.Email}
	identity, err := h.identityUC.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		redisplay(c, loginForm(values), err)
		return
	}

	if err := h.session.establish(c, identity); err != nil {
		c.Error(err)
		return
	}
	if identity.MustResetPassword {
		c.Redirect(http.StatusSeeOther, passwordChangePath)
		return
	}
	c.Redirect(http.StatusSeeOther, safeNext(c.Query("next")))
}

// Logout godoc
// @Summary      Log out
// @Tags         pages
// @Success      303
// @Router       /logout [post]
func (h *PageHandler) Logout(c *gin.Context) {
	h.session.clear(c)
	c.Redirect(http.StatusSeeOther, middleware.LoginPath)
}

// Home godoc
// @Summary      Post listing
// @Tags         pages
// @Produce      json
// @Param        limit   query  int  false  "Page size"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {object}  response.Response{data=[]domain.Post}
// @Failure      302
// @Router       /home [get]
func (h *PageHandler) Home(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	posts, err := h.postUC.ListPosts(c.Request.Context(), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Posts", posts)
}

// NewPostForm godoc
// @Summary      New post form
// @Tags         pages
// @Produce      json
// @Success      200  {object}  response.Response{data=response.FormPage}
// @Failure      302
// @Failure      403  {object}  response.Response
// @Router       /posts/new [get]
func (h *PageHandler) NewPostForm(c *gin.Context) {
	response.Form(c, http.StatusOK, "New post", postForm(nil))
}

// CreatePost godoc
// @Summary      Create a post
// @Description  The author is always the session identity
// @Tags         pages
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        title        formData  string  true  "Title"
// @Param        description  formData  string  true  "Description"
// @Success      303
// @Failure      403  {object}  response.Response
// @Failure      422  {object}  response.Response{data=response.FormPage}
// @Router       /posts/new [post]
func (h *PageHandler) CreatePost(c *gin.Context) {
	var input domain.PostInput
	if err := c.ShouldBind(&input); err != nil {
		redisplay(c, postForm(nil), apperror.BadRequest("Invalid form submission"))
		return
	}

	if _, err := h.postUC.CreatePost(c.Request.Context(), input); err != nil {
		redisplay(c, postForm(input), err)
		return
	}
	c.Redirect(http.StatusSeeOther, homePath)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Also clears the forced reset on issued credentials
// @Tags         pages
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        current_password  formData  string  true  "Current password"
// @Param        new_password1     formData  string  true  "New password"
// @Param        new_password2     formData  string  true  "New password confirmation"
// @Success      303
// @Failure      422  {object}  response.Response{data=response.FormPage}
// @Router       /password/change [post]
func (h *PageHandler) ChangePassword(c *gin.Context) {
	form := response.FormPage{
		Name:   "password_change",
		Action: passwordChangePath,
		Method: http.MethodPost,
		Fields: []string{"current_password", "new_password1", "new_password2"},
	}

	var req domain.ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		redisplay(c, form, apperror.BadRequest("Invalid form submission"))
		return
	}

	identity := middleware.CurrentIdentity(c)
	if err := h.identityUC.ChangePassword(c.Request.Context(), identity.ID, req); err != nil {
		redisplay(c, form, err)
		return
	}
	c.Redirect(http.StatusSeeOther, homePath)
}
