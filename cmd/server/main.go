package main

import (
	appthandler "medbook/internal/appointments/handler"
	apptrepository "medbook/internal/appointments/repository"
	apptservice "medbook/internal/appointments/service"
	apptvalidator "medbook/internal/appointments/validator"
	authhandler "medbook/internal/auth/handler"
	authservice "medbook/internal/auth/service"
	rxhandler "medbook/internal/prescriptions/handler"
	rxrepository "medbook/internal/prescriptions/repository"
	rxservice "medbook/internal/prescriptions/service"
	rxvalidator "medbook/internal/prescriptions/validator"
	usershandler "medbook/internal/users/handler"
	usersrepository "medbook/internal/users/repository"
	usersservice "medbook/internal/users/service"
	usersvalidator "medbook/internal/users/validator"
	"medbook/pkg/app"
	"medbook/pkg/config"
	"medbook/pkg/contracts"
	mongodb "medbook/pkg/db/mongo"
	"medbook/pkg/events"
	"medbook/pkg/kafka"
	"medbook/pkg/token"
)

const ServiceName = "medbook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting MedBook service")

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	serverApp := app.NewApplication(cfg)

	appointmentEvents := initPublisher(cfg, serverApp, cfg.AppointmentsTopic)
	prescriptionEvents := initPublisher(cfg, serverApp, cfg.PrescriptionsTopic)
	handlers := initHandlers(cfg, tokens, appointmentEvents, prescriptionEvents)

	serverApp.SetApp(tokens, handlers...)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, serverApp *app.Application, topic string) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, events will not be published", "topic", topic)
		return events.NewNopPublisher()
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, topic, cfg.KafkaDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "topic", topic, "error", err)
	}
	serverApp.AddProducer(producer)

	cfg.Log.Info("Kafka producer initialized", "topic", topic)
	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}

func initHandlers(cfg *config.Config, tokens *token.Manager, appointmentEvents, prescriptionEvents events.Publisher) []contracts.Handler {
	userValidator := usersvalidator.NewUserValidator(cfg.Log)
	userRepo := usersrepository.NewMongoUserRepository(cfg)
	userService := usersservice.NewUserService(userRepo, userValidator, cfg)

	authService := authservice.NewAuthService(userRepo, userValidator, tokens, cfg)

	tx := mongodb.NewTransactionManager(cfg.Client.Mongo)
	appointmentValidator := apptvalidator.NewAppointmentValidator(cfg.Log)
	appointmentRepo := apptrepository.NewMongoAppointmentRepository(cfg)
	slotLockRepo := apptrepository.NewMongoSlotLockRepository(cfg)
	appointmentService := apptservice.NewAppointmentService(
		appointmentRepo,
		slotLockRepo,
		userRepo,
		appointmentValidator,
		tx,
		appointmentEvents,
		cfg,
	)

	prescriptionValidator := rxvalidator.NewPrescriptionValidator(cfg.Log)
	prescriptionRepo := rxrepository.NewMongoPrescriptionRepository(cfg)
	prescriptionService := rxservice.NewPrescriptionService(
		prescriptionRepo,
		appointmentRepo,
		userRepo,
		prescriptionValidator,
		prescriptionEvents,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		authhandler.NewAuthHandler(authService, cfg.Log),
		usershandler.NewUserHandler(userService, cfg.Log),
		appthandler.NewAppointmentHandler(appointmentService, cfg.Log),
		rxhandler.NewPrescriptionHandler(prescriptionService, cfg.Log),
	}
}
