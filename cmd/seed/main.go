// seed crea una cuenta de demostración con catálogo y algunas ventas.
//
// Uso: go run ./cmd/seed [ruta/productos.csv]
// Sin CSV usa un catálogo de ejemplo. Credenciales: SEED_EMAIL / SEED_PASSWORD
// (por defecto demo@inventario.pos / demo12345). Es idempotente: no duplica productos ni la cuenta.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhoicas/inventario-pos/internal/application/auth"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/application/usecase"
	"github.com/jhoicas/inventario-pos/internal/domain"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-pos/pkg/config"
	"github.com/jhoicas/inventario-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	catalog := demoCatalog
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("abrir CSV")
		}
		catalog, err = readCatalog(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("file", os.Args[1]).Msg("leer CSV")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	email := envOr("SEED_EMAIL", "demo@inventario.pos")
	password := envOr("SEED_PASSWORD", "demo12345")
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer})

	_, err = authUC.RegisterUser(ctx, dto.RegisterRequest{Email: email, Password: password, FirstName: "Demo", LastName: "Tienda"})
	if err != nil && !errors.Is(err, domain.ErrEmailAlreadyExists) {
		log.Fatal().Err(err).Msg("crear cuenta demo")
	}
	login, err := authUC.Login(ctx, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		log.Fatal().Err(err).Msg("login cuenta demo (¿password distinta a la existente?)")
	}
	userID := login.User.ID

	productUC := usecase.NewProductUseCase(txRunner, productRepo)
	var created []*dto.ProductResponse
	for _, p := range catalog {
		out, err := productUC.Create(ctx, userID, p)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			log.Debug().Str("barcode", p.Barcode).Msg("producto ya existe")
		case err != nil:
			log.Fatal().Err(err).Str("barcode", p.Barcode).Msg("crear producto")
		default:
			created = append(created, out)
		}
	}

	// Unas ventas para que el dashboard tenga datos. Solo en la primera carga.
	processor := sales.NewProcessor(txRunner, nil, log.Component("sales"))
	sold := 0
	for i, p := range created {
		if p.Stock < 2 || i%2 == 1 {
			continue
		}
		_, err := processor.Process(ctx, sales.Input{
			UserID: userID,
			Items:  []sales.Item{{ProductID: p.ID, Quantity: 2}},
		})
		if err != nil {
			log.Warn().Err(err).Int64("product_id", p.ID).Msg("venta demo rechazada")
			continue
		}
		sold++
	}

	log.Info().
		Str("email", email).
		Int64("user_id", userID).
		Int("productos_nuevos", len(created)).
		Int("ventas", sold).
		Msg("seed completado")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
