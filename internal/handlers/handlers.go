package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/ai"
	"github.com/01moynul/hidaaya-golang/internal/catalog"
	"github.com/01moynul/hidaaya-golang/internal/checkout"
	"github.com/01moynul/hidaaya-golang/internal/email"
	"github.com/01moynul/hidaaya-golang/internal/models"
	"github.com/01moynul/hidaaya-golang/internal/orders"
	"github.com/01moynul/hidaaya-golang/internal/reports"
	"github.com/01moynul/hidaaya-golang/internal/session"
	"github.com/01moynul/hidaaya-golang/internal/users"
)

// ProductReader serves storefront catalog reads.
type ProductReader interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	ListFeatured(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, category models.Category) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
}

// ProductWriter is the back-office side of the catalog.
type ProductWriter interface {
	Create(ctx context.Context, in catalog.ProductInput) (models.Product, error)
	Update(ctx context.Context, id string, patch catalog.ProductPatch) (models.Product, error)
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, productID, url string, primary bool) (models.ProductImage, error)
}

type SettingsStore interface {
	GetOrDefault(ctx context.Context) models.StoreSettings
	Update(ctx context.Context, patch models.StoreSettingsPatch) (*models.StoreSettings, error)
}

type OrderStore interface {
	List(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id int64) (models.Order, error)
	UpdateStatus(ctx context.Context, id int64, next models.OrderStatus) (models.OrderStatus, error)
	RecordNotification(ctx context.Context, orderID int64, kind models.NotificationKind, status, detail string) error
	Notifications(ctx context.Context, orderID int64) ([]models.Notification, error)
	DailySummary(ctx context.Context, day time.Time) (orders.Summary, error)
}

type UserStore interface {
	Register(ctx context.Context, in users.RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (models.User, error)
}

type TokenIssuer interface {
	Generate(userID string, role models.Role) (string, error)
}

type FileStore interface {
	Save(originalName string, r io.Reader) (string, error)
}

// Assistant is the optional AI helper for the back-office.
type Assistant interface {
	DescribeProduct(ctx context.Context, in ai.DescribeInput) (string, error)
	Ask(ctx context.Context, question string) (ai.Answer, error)
}

type ReportRunner interface {
	Run(ctx context.Context, day time.Time) (reports.Report, error)
}

// FunctionHost runs the notification functions in-process.
type FunctionHost interface {
	HandleOrderFunction(ctx context.Context, raw []byte) (email.Result, error)
	HandleContactFunction(ctx context.Context, raw []byte) (email.Result, error)
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Catalog   ProductReader
	Products  ProductWriter
	Settings  SettingsStore
	Orders    OrderStore
	Users     UserStore
	Tokens    TokenIssuer
	Sessions  *session.Store
	Checkout  *checkout.Orchestrator
	Notifier  email.Notifier
	Functions FunctionHost
	Files     FileStore
	AI        Assistant // nil when no API key is configured
	Reports   ReportRunner
	Logger    *zap.Logger
	Now       func() time.Time
}

// Ping handles GET /v1/ping
func (h *Handlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong!"})
}

// visitor loads the caller's cart and checkout. An unreadable cookie starts
// the visitor over rather than failing the request.
func (h *Handlers) visitor(c *gin.Context) *session.Visitor {
	v, err := h.Sessions.Load(c.Request)
	if err != nil {
		h.logger().Warn("discarding unreadable session", zap.Error(err))
	}
	return v
}

// saveVisitor must run before the response body is written.
func (h *Handlers) saveVisitor(c *gin.Context, v *session.Visitor) bool {
	if err := h.Sessions.Save(c.Writer, c.Request, v); err != nil {
		h.logger().Error("failed to save session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return false
	}
	return true
}

func (h *Handlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func (h *Handlers) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}
