package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nik132-eng/roastit/internal/domain"
	"github.com/nik132-eng/roastit/internal/present/rest/middleware"
	"github.com/nik132-eng/roastit/internal/present/rest/presenter"
	"github.com/nik132-eng/roastit/internal/usecase"
)

// Realtime relays events of the channels received on input to output.
type Realtime interface {
	Realtime(ctx context.Context, input <-chan []string, output chan<- domain.Event)
}

type Handler struct {
	post   *usecase.PostUsecase
	roast  *usecase.RoastUsecase
	feed   *usecase.FeedUsecase
	user   *usecase.UserUsecase
	signal Realtime
}

func NewHandler(
	post *usecase.PostUsecase,
	roast *usecase.RoastUsecase,
	feed *usecase.FeedUsecase,
	user *usecase.UserUsecase,
	signal Realtime,
) *Handler {
	return &Handler{
		post:   post,
		roast:  roast,
		feed:   feed,
		user:   user,
		signal: signal,
	}
}

// RegisterRoutes mounts the API. write is applied to the endpoints that
// create content.
func (h *Handler) RegisterRoutes(e *echo.Echo, write ...echo.MiddlewareFunc) {
	e.GET("/healthz", h.handleHealthz)
	e.POST("/posts", h.handleCreatePost, write...)
	e.GET("/posts", h.handleListPosts)
	e.GET("/posts/:id", h.handleGetPost)
	e.POST("/roasts", h.handleCreateRoast, write...)
	e.GET("/users/:id", h.handleGetUser)
	e.GET("/me", h.handleMe)
	if h.signal != nil {
		e.GET("/realtime", h.handleRealtime)
	}
}

func (h *Handler) handleHealthz(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleCreatePost(c echo.Context) error {
	ctx := c.Request().Context()
	caller := middleware.Caller(ctx)

	input := usecase.PostInput{
		Title: c.FormValue("title"),
	}

	// an unreadable image is reported like a missing one
	file, err := c.FormFile("image")
	if err == nil {
		input.Filename = file.Filename
		src, err := file.Open()
		if err == nil {
			input.Image, err = io.ReadAll(src)
			src.Close()
			if err != nil {
				input.Image = nil
			}
		}
	}

	post, err := h.post.SubmitPost(ctx, caller, input)
	if err != nil {
		return presenter.Error(c, err, "Failed to create post", true)
	}

	return presenter.Created(c, post)
}

func (h *Handler) handleCreateRoast(c echo.Context) error {
	ctx := c.Request().Context()
	caller := middleware.Caller(ctx)

	var input usecase.RoastInput
	if err := c.Bind(&input); err != nil {
		input = usecase.RoastInput{}
	}

	roast, err := h.roast.SubmitRoast(ctx, caller, input)
	if err != nil {
		return presenter.Error(c, err, "Internal Server Error", false)
	}

	return presenter.Created(c, roast)
}

func (h *Handler) handleListPosts(c echo.Context) error {
	ctx := c.Request().Context()

	sort, ok := domain.ParseFeedSort(c.QueryParam("sort"))
	if !ok {
		return presenter.BadRequestMessage(c, "invalid sort parameter")
	}

	limit := 0
	limitStr := c.QueryParam("limit")
	if limitStr != "" {
		limitInt, err := strconv.Atoi(limitStr)
		if err != nil || limitInt < 1 {
			return presenter.BadRequestMessage(c, "invalid limit parameter")
		}
		limit = limitInt
	}

	posts, err := h.feed.ListPosts(ctx, domain.FeedQuery{Sort: sort, Limit: limit})
	if err != nil {
		return presenter.Error(c, err, "Failed to fetch posts", true)
	}

	return presenter.OK(c, posts)
}

func (h *Handler) handleGetPost(c echo.Context) error {
	ctx := c.Request().Context()

	detail, err := h.feed.GetPost(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err, "Failed to fetch post", true)
	}

	return presenter.OK(c, detail)
}

func (h *Handler) handleGetUser(c echo.Context) error {
	ctx := c.Request().Context()

	profile, err := h.user.Profile(ctx, c.Param("id"))
	if err != nil {
		return presenter.Error(c, err, "Failed to fetch user", true)
	}

	return presenter.OK(c, profile)
}

func (h *Handler) handleMe(c echo.Context) error {
	ctx := c.Request().Context()
	caller := middleware.Caller(ctx)
	if caller.Anonymous() {
		return presenter.Unauthorized(c)
	}

	user, err := h.user.Get(ctx, caller.UserID)
	if err != nil {
		return presenter.Error(c, err, "Failed to fetch user", true)
	}

	return presenter.OK(c, user)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Request struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan domain.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		defer close(input)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else if ctx.Err() == nil {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Channels:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Channels),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
