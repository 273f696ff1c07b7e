package echoServer

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/azamazri/roomah-sub001/app/echoServer/controller/admin"
	"github.com/azamazri/roomah-sub001/app/echoServer/controller/auth"
	"github.com/azamazri/roomah-sub001/app/echoServer/controller/candidate"
	"github.com/azamazri/roomah-sub001/app/echoServer/controller/cv"
	"github.com/azamazri/roomah-sub001/app/echoServer/controller/koin"
	"github.com/azamazri/roomah-sub001/app/echoServer/controller/notification"
	"github.com/azamazri/roomah-sub001/app/echoServer/controller/payment"
	"github.com/azamazri/roomah-sub001/app/echoServer/controller/taaruf"
)

type C struct {
	Auth         *auth.Controller
	Candidate    *candidate.Controller
	Taaruf       *taaruf.Controller
	Koin         *koin.Controller
	Payment      *payment.Controller
	CV           *cv.Controller
	Admin        *admin.Controller
	Notification *notification.Controller
	JWTSecret    string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// payment gateway callback
	pub.POST("/payment/midtrans", c.Payment.HandleMidtrans)

	// Auth
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	})

	authed := e.Group("/v1")
	authed.Use(verify, ExtractIdentity())

	// Candidates
	authed.GET("/candidates", c.Candidate.Search)
	authed.GET("/candidates/:id", c.Candidate.Detail)

	// Taaruf
	authed.POST("/taaruf/requests", c.Taaruf.Submit)
	authed.POST("/taaruf/requests/:id/accept", c.Taaruf.Accept)
	authed.POST("/taaruf/requests/:id/reject", c.Taaruf.Reject)
	authed.GET("/taaruf/requests/incoming", c.Taaruf.Incoming)
	authed.GET("/taaruf/requests/sent", c.Taaruf.Sent)
	authed.GET("/taaruf/sessions", c.Taaruf.Active)

	// Koin wallet
	authed.POST("/koin/topups", c.Koin.CreateTopup) // returns Snap token
	authed.POST("/koin/topups/:order_id/confirm", c.Koin.ConfirmTopup)
	authed.GET("/koin/saldo", c.Koin.Saldo)
	authed.GET("/koin/ledger", c.Koin.Ledger)

	// CV self-service
	authed.GET("/cv/me", c.CV.Mine)
	authed.POST("/cv", c.CV.Submit)

	// Notifications
	authed.GET("/notifications", c.Notification.List)

	// Admin
	adm := e.Group("/v1/admin")
	adm.Use(verify, ExtractIdentity(), AdminOnly())
	adm.GET("/cv-queue", c.Admin.CVQueue)
	adm.POST("/cv/:user_id/approve", c.Admin.ApproveCV)
	adm.POST("/cv/:user_id/revise", c.Admin.ReviseCV)
	adm.POST("/taaruf/sessions/:id/stage", c.Admin.AdvanceStage)
}
