package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/VitaminP8/picstream/internal/apperrors"
	"github.com/VitaminP8/picstream/internal/auth"
	"github.com/VitaminP8/picstream/internal/config"
	"github.com/VitaminP8/picstream/internal/post"
	"github.com/VitaminP8/picstream/internal/social"
	"github.com/VitaminP8/picstream/internal/subscription"
	"github.com/VitaminP8/picstream/internal/token"
	"github.com/VitaminP8/picstream/internal/upload"
	"github.com/VitaminP8/picstream/internal/user"

	"github.com/VitaminP8/picstream/graph"
	"github.com/VitaminP8/picstream/graph/generated"
	"github.com/VitaminP8/picstream/internal/storage/memory"
	"github.com/VitaminP8/picstream/internal/storage/mongodb"
	"github.com/VitaminP8/picstream/internal/storage/neo4jdb"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

func main() {
	storageType := flag.String("storage", "memory", "Тип хранилища: memory или mongo")
	flag.Parse()

	// загружаем .env из нашего config.go
	config.LoadEnv()

	var userStore user.UserStorage
	var postStore post.PostStorage
	var graphStore social.GraphStorage
	var tokenStore token.TokenStorage

	switch *storageType {
	case "mongo":
		if err := mongodb.InitDB(); err != nil {
			log.Fatalf("failed to init mongodb: %v", err)
		}
		if err := neo4jdb.InitDriver(context.Background()); err != nil {
			log.Fatalf("failed to init neo4j: %v", err)
		}

		log.Println("Используется MongoDB + Neo4j хранилище")
		userStore = mongodb.NewUserMongoStorage()
		postStore = mongodb.NewPostMongoStorage()
		tokenStore = mongodb.NewTokenMongoStorage()
		graphStore = neo4jdb.NewGraphNeo4jStorage()

	case "memory":
		log.Println("Используется in-memory хранилище")
		memUsers := memory.NewUserMemoryStorage()
		userStore = memUsers
		postStore = memory.NewPostMemoryStorage(memUsers)
		graphStore = memory.NewGraphMemoryStorage()
		tokenStore = memory.NewTokenMemoryStorage()

	default:
		log.Fatalf("неизвестный тип хранилища: %s", *storageType)
	}

	// Инициализация резолвера
	resolver := &graph.Resolver{
		UserStore:           userStore,
		PostStore:           postStore,
		GraphStore:          graphStore,
		TokenStore:          tokenStore,
		SubscriptionManager: subscription.NewSubscriptionManager(),
	}

	// Создаем новый сервер GraphQL с резолверами
	srv := handler.NewDefaultServer(generated.NewExecutableSchema(generated.Config{
		Resolvers: resolver,
	}))

	// Код типизированной ошибки уходит клиенту в extensions
	srv.SetErrorPresenter(func(ctx context.Context, err error) *gqlerror.Error {
		gqlErr := graphql.DefaultErrorPresenter(ctx, err)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if gqlErr.Extensions == nil {
				gqlErr.Extensions = map[string]interface{}{}
			}
			gqlErr.Extensions["code"] = appErr.Code
		}
		return gqlErr
	})

	// Эндпоинт загрузки файлов и раздача статики
	uploadDir := config.GetEnvDefault("UPLOAD_DIR", "uploads")
	uploadHandler, err := upload.NewHandler(uploadDir)
	if err != nil {
		log.Fatalf("failed to init upload handler: %v", err)
	}

	// Middleware получает запрос, вытаскивает токен из куки или заголовка, проверяет
	// черный список, валидирует подпись и кладет имя пользователя в context
	http.Handle("/query", auth.Middleware(tokenStore, srv))
	http.Handle("/upload", uploadHandler)
	http.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
	// Страница с тестовым интерфейсом Playground
	http.Handle("/", playground.Handler("GraphQL Playground", "/query"))

	// HTTP сервер
	server := &http.Server{
		Addr: config.GetEnvDefault("SERVER_ADDR", ":8080"),
	}

	// запуск HTTP сервера
	go func() {
		log.Printf("Сервер запущен на http://localhost%s/", server.Addr)
		// строка не возвращается (блокирует поток) пока не выполнится server.Shutdown() или не произойдет фатальная ошибка
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // ждет сигнал

	log.Println("Завершение...")

	if *storageType == "mongo" {
		if err := mongodb.CloseDB(); err != nil {
			log.Printf("Ошибка при закрытии MongoDB: %v", err)
		}
		if err := neo4jdb.CloseDriver(context.Background()); err != nil {
			log.Printf("Ошибка при закрытии Neo4j: %v", err)
		}
	}

	if err := server.Shutdown(context.Background()); err != nil {
		log.Fatalf("Ошибка при завершении сервера: %v", err)
	}

	log.Println("Сервер остановлен корректно")
}
