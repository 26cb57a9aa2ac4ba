// Package apitest implementa en memoria la API remota de la tienda.
// Se usa en tests y como servidor local de desarrollo (cmd/devapi).
package apitest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
)

type Options struct {
	Secret   string
	TokenTTL time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

type account struct {
	user         domain.User
	passwordHash string
}

// Server guarda categorias, productos, cuentas y carritos en memoria.
type Server struct {
	logger *zap.Logger
	tokens *tokenSigner
	now    func() time.Time

	mu         sync.Mutex
	categories []domain.Category
	products   map[string]domain.Product
	order      []string
	accounts   map[string]account
	carts      map[string][]string
	requests   []RecordedRequest
}

// RecordedRequest resume una peticion recibida, para aserciones en tests.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

func New(opts Options) *Server {
	if opts.Secret == "" {
		opts.Secret = "devapi-secret"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		logger:   opts.Logger,
		tokens:   newTokenSigner(opts.Secret, opts.TokenTTL, opts.Now),
		now:      opts.Now,
		products: make(map[string]domain.Product),
		accounts: make(map[string]account),
		carts:    make(map[string][]string),
	}
}

// Start levanta el servidor en un puerto local; el llamador debe cerrarlo.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Handler())
}

func (s *Server) AddCategory(name string) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat := domain.Category{ID: newID(), Name: name}
	s.categories = append(s.categories, cat)
	return cat
}

func (s *Server) AddProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	s.putProductLocked(p)
	return p
}

func (s *Server) AddUser(name, email, password string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, errors.New("email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return domain.User{}, errUserExists
	}
	user := domain.User{ID: newID(), Name: strings.TrimSpace(name), Email: email}
	s.accounts[email] = account{user: user, passwordHash: string(hash)}
	return user, nil
}

// Product devuelve el producto guardado, si existe.
func (s *Server) Product(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

// Cart devuelve los ids en el carrito del usuario.
func (s *Server) Cart(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.carts[userID]...)
}

// Requests devuelve las peticiones recibidas en orden.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Handler arma el router de gin con las rutas de la API.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(zapLoggerMiddleware(s.logger), gin.Recovery(), s.recordMiddleware())

	r.GET("/api/category/getCategories", s.getCategories)

	product := r.Group("/api/product")
	product.GET("/fetchProducts", s.fetchProducts)
	product.POST("/getProductById", s.getProductByID)
	product.POST("/add", s.addProduct)
	product.POST("/update", s.updateProduct)
	product.DELETE("/delete", s.deleteProduct)

	auth := r.Group("/api/auth")
	auth.POST("/login", s.login)
	auth.POST("/register", s.register)

	checkout := r.Group("/api/checkout", bearerAuthMiddleware(s.tokens))
	checkout.POST("", s.addToCart)
	checkout.POST("/getUserCartProducts", s.cartProducts)
	checkout.POST("/removeProductFromCart", s.removeFromCart)

	return r
}

func (s *Server) putProductLocked(p domain.Product) {
	if _, exists := s.products[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.products[p.ID] = p
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// zapLoggerMiddleware registra cada request con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
		)
	}
}

func (s *Server) recordMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			Authorization: c.GetHeader("Authorization"),
			RequestID:     c.GetHeader("X-Request-ID"),
		})
		s.mu.Unlock()
		c.Next()
	}
}
