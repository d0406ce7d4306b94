package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/services"
)

type messageResponse struct {
	Message string `json:"message"`
}

type authResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
	Token   string            `json:"token"`
}

type userResponse struct {
	User models.PublicUser `json:"user"`
}

type booksResponse struct {
	Books []*models.Book `json:"books"`
}

type bookResponse struct {
	Message string       `json:"message,omitempty"`
	Book    *models.Book `json:"book"`
}

type coverResponse struct {
	Upload *services.CoverUpload `json:"upload"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type coverRequest struct {
	ContentType string `json:"content_type"`
}

var errNoIdentity = common.NewError(common.ErrUnauthenticated, "Access denied. No token provided.")

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Server is running!"})
}

func (s *Server) signup(c echo.Context) error {
	var in services.SignupInput
	if err := c.Bind(&in); err != nil {
		return errInvalidBody
	}

	res, err := s.accounts.Signup(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Message: "User created successfully", User: res.User, Token: res.Token})
}

func (s *Server) login(c echo.Context) error {
	var in loginRequest
	if err := c.Bind(&in); err != nil {
		return errInvalidBody
	}

	res, err := s.accounts.Login(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Message: "Login successful", User: res.User, Token: res.Token})
}

func (s *Server) profile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := s.accounts.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{User: *user})
}

func (s *Server) listBooks(c echo.Context) error {
	owner, err := currentUserID(c)
	if err != nil {
		return err
	}

	books, err := s.books.List(c.Request().Context(), owner)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, booksResponse{Books: books})
}

func (s *Server) getBook(c echo.Context) error {
	owner, err := currentUserID(c)
	if err != nil {
		return err
	}

	book, err := s.books.Get(c.Request().Context(), owner, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookResponse{Book: book})
}

func (s *Server) createBook(c echo.Context) error {
	owner, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in models.BookInput
	if err := c.Bind(&in); err != nil {
		return errInvalidBody
	}

	book, err := s.books.Create(c.Request().Context(), owner, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, bookResponse{Message: "Book created successfully", Book: book})
}

func (s *Server) updateBook(c echo.Context) error {
	owner, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in models.BookInput
	if err := c.Bind(&in); err != nil {
		return errInvalidBody
	}

	book, err := s.books.Update(c.Request().Context(), owner, c.Param("id"), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookResponse{Message: "Book updated successfully", Book: book})
}

func (s *Server) deleteBook(c echo.Context) error {
	owner, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := s.books.Delete(c.Request().Context(), owner, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Book deleted successfully"})
}

func (s *Server) presignCover(c echo.Context) error {
	owner, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in coverRequest
	if err := c.Bind(&in); err != nil {
		return errInvalidBody
	}

	upload, err := s.covers.PresignUpload(c.Request().Context(), owner, in.ContentType)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, coverResponse{Upload: upload})
}

func currentUserID(c echo.Context) (string, error) {
	id, ok := auth.UserIDFromContext(c.Request().Context())
	if !ok {
		return "", errNoIdentity
	}
	return id, nil
}
