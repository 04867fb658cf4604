// cmd/container.go
//
// Root composition root. Owns infrastructure (user store, Redis, mail
// provider) and composes bounded-context containers.
package main

import (
	"context"
	"time"

	"github.com/Abraxas-365/quizcraft/pkg/billing"
	"github.com/Abraxas-365/quizcraft/pkg/billing/billingapi"
	"github.com/Abraxas-365/quizcraft/pkg/billing/billingsrv"
	"github.com/Abraxas-365/quizcraft/pkg/billing/billingstripe"
	"github.com/Abraxas-365/quizcraft/pkg/config"
	"github.com/Abraxas-365/quizcraft/pkg/iam/iamcontainer"
	"github.com/Abraxas-365/quizcraft/pkg/iam/user"
	"github.com/Abraxas-365/quizcraft/pkg/iam/user/userinfra"
	"github.com/Abraxas-365/quizcraft/pkg/jobx"
	"github.com/Abraxas-365/quizcraft/pkg/jobx/jobxredis"
	"github.com/Abraxas-365/quizcraft/pkg/logx"
	"github.com/Abraxas-365/quizcraft/pkg/notifx"
	"github.com/Abraxas-365/quizcraft/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/quizcraft/pkg/notifx/notifxses"
	"github.com/Abraxas-365/quizcraft/pkg/notifx/notifxsmtp"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Container holds shared infrastructure and composed module containers.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across all modules)
	Mongo    *mongo.Client
	DB       *sqlx.DB
	Redis    *redis.Client
	Users    user.Repository
	Mail     *notifx.Client
	Jobs     *jobx.Client
	Provider billing.Provider

	// Bounded-context containers
	IAM             *iamcontainer.Container
	BillingService  *billingsrv.BillingService
	BillingHandlers *billingapi.BillingHandlers
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure: user store, Redis, mail
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. User store
	c.initUserStore()

	// 2. Mail provider
	c.initMail()

	// 3. Redis + job queue, only when OTP mail is queued
	if c.Config.Mail.Delivery == config.MailDeliveryQueue {
		c.initJobs()
	}

	// 4. Payment provider
	c.Provider = billingstripe.NewStripeProvider(c.Config.Billing.StripeSecretKey)
	logx.Info("  ✅ Stripe provider configured")

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initUserStore() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch c.Config.Store.Driver {
	case "mongo":
		client, err := userinfra.ConnectMongo(ctx, c.Config.Store.MongoURI)
		if err != nil {
			logx.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		repo := userinfra.NewMongoUserRepository(client, c.Config.Store.MongoDatabase)
		if err := repo.EnsureIndexes(ctx); err != nil {
			logx.Fatalf("Failed to create user indexes: %v", err)
		}
		c.Mongo = client
		c.Users = repo
		logx.Infof("  ✅ MongoDB connected (database: %s)", c.Config.Store.MongoDatabase)

	case "postgres":
		db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Store.Postgres.DSN())
		if err != nil {
			logx.Fatalf("Failed to connect to database: %v", err)
		}
		repo := userinfra.NewPostgresUserRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logx.Fatalf("Failed to create users table: %v", err)
		}
		c.DB = db
		c.Users = repo
		logx.Info("  ✅ Database connected")

	case "memory":
		c.Users = userinfra.NewMemoryUserRepository()
		logx.Warn("  ⚠️  Using in-memory user store (data is lost on restart)")

	default:
		logx.Fatalf("Unknown STORE_DRIVER: %s (use 'mongo', 'postgres' or 'memory')", c.Config.Store.Driver)
	}
}

func (c *Container) initMail() {
	var provider notifx.EmailSender

	switch c.Config.Notifx.Provider {
	case "ses":
		ses, err := notifxses.NewFromRegion(context.Background(), c.Config.Notifx.AWSRegion)
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		provider = ses
		logx.Infof("  ✅ SES mail provider configured (region: %s)", c.Config.Notifx.AWSRegion)

	case "smtp":
		provider = notifxsmtp.NewSMTPProvider(
			c.Config.Mail.Host,
			c.Config.Mail.Port,
			c.Config.Mail.Username,
			c.Config.Mail.Password,
		)
		logx.Infof("  ✅ SMTP mail provider configured (%s:%d)", c.Config.Mail.Host, c.Config.Mail.Port)

	case "console":
		provider = notifxconsole.NewConsoleProvider(logx.GetDefaultLogger())
		logx.Warn("  ⚠️  Using console mail provider (no mail leaves the process)")

	default:
		logx.Fatalf("Unknown NOTIFX_PROVIDER: %s (use 'ses', 'smtp' or 'console')", c.Config.Notifx.Provider)
	}

	c.Mail = notifx.NewClient(provider, notifx.Sender{
		Address: c.Config.Notifx.FromAddress,
		Name:    c.Config.Notifx.FromName,
	})
}

func (c *Container) initJobs() {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required with MAIL_DELIVERY=queue)", err)
	}
	logx.Info("  ✅ Redis connected")

	queue := jobxredis.NewRedisQueue(c.Redis, c.Config.Jobx.KeyPrefix, 0)
	c.Jobs = jobx.NewClient(queue, jobx.WorkerOptions{
		Queues:          c.Config.Jobx.Queues,
		Concurrency:     c.Config.Jobx.Concurrency,
		PollInterval:    c.Config.Jobx.PollInterval,
		ShutdownTimeout: c.Config.Jobx.ShutdownTimeout,
		DequeueTimeout:  c.Config.Jobx.DequeueTimeout,
	})
	logx.Infof("  ✅ Job queue configured (queues: %v)", c.Config.Jobx.Queues)
}

// ---------------------------------------------------------------------------
// Module composition: each bounded context wires itself
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")

	c.BillingService = billingsrv.NewBillingService(c.Provider, c.Users, billingsrv.Config{
		SuccessURL: c.Config.Billing.CheckoutSuccessURL,
		CancelURL:  c.Config.Billing.CheckoutCancelURL,
		Timeout:    c.Config.Billing.CollaboratorTimeout,
	})

	iamC, err := iamcontainer.New(iamcontainer.Deps{
		Cfg:     c.Config,
		Users:   c.Users,
		Mail:    c.Mail,
		Jobs:    c.Jobs,
		Billing: c.BillingService,
	})
	if err != nil {
		logx.Fatalf("Failed to initialize IAM module: %v", err)
	}
	c.IAM = iamC

	c.BillingHandlers = billingapi.NewBillingHandlers(c.BillingService, c.IAM.AuthMiddleware)
	logx.Info("  ✅ Billing module initialized")
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) StartBackgroundServices(ctx context.Context) {
	logx.Info("🔄 Starting background services...")

	if c.Jobs != nil {
		go func() {
			if err := c.Jobs.Start(ctx); err != nil {
				logx.Errorf("Job worker stopped: %v", err)
			}
		}()
		logx.Info("  ✅ Mail worker started")
	}
}

// Ping reports whether the user store is reachable.
func (c *Container) Ping(ctx context.Context) error {
	if p, ok := c.Users.(user.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			logx.Errorf("Error closing MongoDB: %v", err)
		} else {
			logx.Info("  ✅ MongoDB connection closed")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		} else {
			logx.Info("  ✅ Database connection closed")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
