// Package main roomah API.
//
// @title           Roomah Taaruf API
// @version         1.0
// @description     Matrimonial matchmaking service (candidates, taaruf, koin wallet).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/azamazri/roomah-sub001/app/echoServer"
	adminctrl "github.com/azamazri/roomah-sub001/app/echoServer/controller/admin"
	authctrl "github.com/azamazri/roomah-sub001/app/echoServer/controller/auth"
	candidatectrl "github.com/azamazri/roomah-sub001/app/echoServer/controller/candidate"
	cvctrl "github.com/azamazri/roomah-sub001/app/echoServer/controller/cv"
	koinctrl "github.com/azamazri/roomah-sub001/app/echoServer/controller/koin"
	notifctrl "github.com/azamazri/roomah-sub001/app/echoServer/controller/notification"
	paymentctrl "github.com/azamazri/roomah-sub001/app/echoServer/controller/payment"
	taarufctrl "github.com/azamazri/roomah-sub001/app/echoServer/controller/taaruf"
	"github.com/azamazri/roomah-sub001/app/echoServer/validation"
	"github.com/azamazri/roomah-sub001/config"
	candidaterepo "github.com/azamazri/roomah-sub001/repository/candidate"
	cvrepo "github.com/azamazri/roomah-sub001/repository/cv"
	ledgerrepo "github.com/azamazri/roomah-sub001/repository/ledger"
	midtransrepo "github.com/azamazri/roomah-sub001/repository/midtrans"
	notificationrepo "github.com/azamazri/roomah-sub001/repository/notification"
	taarufrepo "github.com/azamazri/roomah-sub001/repository/taaruf"
	topuprepo "github.com/azamazri/roomah-sub001/repository/topup"
	userrepo "github.com/azamazri/roomah-sub001/repository/user"
	adminsvc "github.com/azamazri/roomah-sub001/service/admin"
	authsvc "github.com/azamazri/roomah-sub001/service/auth"
	candidatesvc "github.com/azamazri/roomah-sub001/service/candidate"
	cvsvc "github.com/azamazri/roomah-sub001/service/cv"
	paymentsvc "github.com/azamazri/roomah-sub001/service/payment"
	taarufsvc "github.com/azamazri/roomah-sub001/service/taaruf"
	walletsvc "github.com/azamazri/roomah-sub001/service/wallet"
	"github.com/azamazri/roomah-sub001/util/database"
)

func main() {

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB: *sql.DB, migrations run on boot
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	lr := ledgerrepo.New(db)
	tpr := topuprepo.New(db)
	cr := cvrepo.New(db)
	cdr := candidaterepo.New(db)
	tr := taarufrepo.New(db)
	mr := midtransrepo.NewHTTP(cfg.MidtransServerKey, cfg.MidtransIsProd)
	feed := notificationrepo.New(cfg.RedisAddr)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	ws := walletsvc.New(lr, tpr, ur, mr)
	ps := paymentsvc.New(db, mr, tpr, lr, log)
	tsv := taarufsvc.New(db, tr, cr, lr, feed, cfg.TaarufFeeCoins, taarufsvc.ExpiryWindow(cfg.RequestExpiryWindow), log)
	cds := candidatesvc.New(cdr, cr)
	cvs := cvsvc.New(cr)
	ads := adminsvc.New(cr)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	candC := &candidatectrl.Controller{Svc: cds, V: v, Log: log}
	taarufC := &taarufctrl.Controller{Svc: tsv, V: v, Log: log}
	koinC := &koinctrl.Controller{Wallet: ws, Payment: ps, V: v, Log: log}
	payC := &paymentctrl.Controller{Svc: ps, Log: log}
	cvC := &cvctrl.Controller{Svc: cvs, V: v, Log: log}
	adminC := &adminctrl.Controller{Svc: ads, Taaruf: tsv, V: v, Log: log}
	notifC := &notifctrl.Controller{Feed: feed, Log: log}

	// echo
	e := echo.New()
	e.HideBanner = true
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	echoServer.Register(e, echoServer.C{
		Auth:         authC,
		Candidate:    candC,
		Taaruf:       taarufC,
		Koin:         koinC,
		Payment:      payC,
		CV:           cvC,
		Admin:        adminC,
		Notification: notifC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", "port", port, "env", cfg.Env)
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		taarufsvc.RunExpirySweeper(gctx, tsv, cfg.ExpirySweepInterval, log)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
