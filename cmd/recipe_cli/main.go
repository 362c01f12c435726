package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"recipe-llm/internal/config"
	"recipe-llm/internal/db"
	"recipe-llm/internal/domain"
	"recipe-llm/internal/llm"
	"recipe-llm/internal/repository"
	"recipe-llm/internal/service"
)

// recipe_cli usa los servicios directamente contra el store configurado, sin pasar por HTTP.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	userRepo, recipeRepo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	llmClient, embedder := llm.NewFromConfig(cfg, logger)
	userSvc := service.NewUserService(logger, userRepo, cfg.BcryptCost)
	recipeSvc := service.NewRecipeService(logger, recipeRepo, userRepo, llmClient, embedder, nil)

	user, err := loginFlow(ctx, reader, userSvc)
	if err != nil {
		log.Fatalf("login: %v", err)
	}
	fmt.Printf("Hola, %s.\n", user.Name)

	for {
		fmt.Println("\n===== Recetas =====")
		fmt.Println("[1] Generar receta")
		fmt.Println("[2] Listar mis recetas")
		fmt.Println("[3] Borrar receta")
		fmt.Println("[4] Buscar similares")
		fmt.Println("[5] Salir")
		fmt.Print("Opción: ")

		switch strings.TrimSpace(readLine(reader)) {
		case "1":
			fmt.Print("Ingredientes: ")
			out, err := recipeSvc.Generate(ctx, user.ID, readLine(reader))
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Printf("\n%s\n\n(guardada con id %s)\n", out.Recipe, out.RecipeID)
		case "2":
			items, err := recipeSvc.List(ctx, user.ID)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			printRecipes(items)
		case "3":
			fmt.Print("ID: ")
			if err := recipeSvc.Delete(ctx, user.ID, strings.TrimSpace(readLine(reader))); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					fmt.Println("No existe esa receta.")
					continue
				}
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println("Receta borrada.")
		case "4":
			fmt.Print("Ingredientes: ")
			query := readLine(reader)
			fmt.Print("Cantidad [5]: ")
			k, _ := strconv.Atoi(strings.TrimSpace(readLine(reader)))
			items, err := recipeSvc.Similar(ctx, user.ID, query, k)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			for _, item := range items {
				fmt.Printf("- %s  %.3f  %s\n", item.ID, item.Distance, item.Ingredients)
			}
		case "5", "q", "Q":
			return
		default:
			fmt.Println("Opción inválida.")
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repository.UserRepository, repository.RecipeRepository, func(), error) {
	if cfg.StoreDriver == config.StoreDriverSQLite {
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return repository.NewSQLiteUserRepository(conn), repository.NewSQLiteRecipeRepository(conn), func() { conn.Close() }, nil
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return repository.NewPgUserRepository(pool), repository.NewPgRecipeRepository(pool), pool.Close, nil
}

func loginFlow(ctx context.Context, reader *bufio.Reader, users *service.UserService) (domain.User, error) {
	fmt.Print("Email: ")
	email := readLine(reader)
	fmt.Print("Contraseña: ")
	password := readLine(reader)

	user, err := users.Authenticate(ctx, email, password)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, service.ErrInvalidCredentials) {
		return domain.User{}, err
	}

	fmt.Print("Credenciales inválidas. ¿Crear cuenta nueva con ese email? [s/N]: ")
	if !strings.EqualFold(readLine(reader), "s") {
		return domain.User{}, err
	}
	fmt.Print("Nombre: ")
	return users.Register(ctx, service.RegisterInput{Name: readLine(reader), Email: email, Password: password})
}

func printRecipes(items []domain.Recipe) {
	if len(items) == 0 {
		fmt.Println("No tienes recetas guardadas.")
		return
	}
	for _, item := range items {
		fmt.Printf("- %s  %s  %s\n", item.ID, item.CreatedAt.Format("2006-01-02 15:04"), item.Ingredients)
	}
}

// readLine no recorta espacios internos; la contraseña se usa tal cual salvo el salto de línea.
func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
