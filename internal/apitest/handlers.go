package apitest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
)

var errUserExists = errors.New("user already exists")

func (s *Server) getCategories(c *gin.Context) {
	s.mu.Lock()
	categories := append([]domain.Category{}, s.categories...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) fetchProducts(c *gin.Context) {
	s.mu.Lock()
	products := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		products = append(products, s.products[id])
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) getProductByID(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	p, ok := s.Product(req.ID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

func (s *Server) addProduct(c *gin.Context) {
	p, ok := s.bindProductForm(c, true)
	if !ok {
		return
	}
	p.ID = newID()
	p.CreatedAt = s.now().UTC()

	s.mu.Lock()
	s.putProductLocked(p)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"status": true, "product": p})
}

func (s *Server) updateProduct(c *gin.Context) {
	id := strings.TrimSpace(c.PostForm("productId"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "productId is required"})
		return
	}
	existing, ok := s.Product(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}
	p, ok := s.bindProductForm(c, existing.Image == "")
	if !ok {
		return
	}
	if p.Image == "" {
		p.Image = existing.Image
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt

	s.mu.Lock()
	s.putProductLocked(p)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"status": true, "product": p})
}

func (s *Server) deleteProduct(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[req.ProductID]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}
	delete(s.products, req.ProductID)
	for i, id := range s.order {
		if id == req.ProductID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": true})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[normalizeEmail(req.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword([]byte(acc.passwordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, err := s.tokens.Issue(acc.user)
	if err != nil {
		s.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not login"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": acc.user})
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "All fields are required"})
		return
	}

	if _, err := s.AddUser(req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, errUserExists) {
			c.JSON(http.StatusConflict, gin.H{"status": false, "message": "User already exists"})
			return
		}
		s.logger.Error("register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "could not register"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": true})
}

func (s *Server) addToCart(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	userID := authUserID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[req.ProductID]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		return
	}
	for _, id := range s.carts[userID] {
		if id == req.ProductID {
			c.JSON(http.StatusOK, gin.H{"status": true})
			return
		}
	}
	s.carts[userID] = append(s.carts[userID], req.ProductID)
	c.JSON(http.StatusOK, gin.H{"status": true})
}

func (s *Server) cartProducts(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}
	if req.UserID != authUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}

	s.mu.Lock()
	products := make([]domain.Product, 0, len(s.carts[req.UserID]))
	for _, id := range s.carts[req.UserID] {
		if p, ok := s.products[id]; ok {
			products = append(products, p)
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) removeFromCart(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	userID := authUserID(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[userID]
	for i, id := range cart {
		if id == req.ProductID {
			s.carts[userID] = append(cart[:i], cart[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": true})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Product not in cart"})
}

// bindProductForm lee el formulario multipart. La imagen puede venir como archivo
// o como referencia de texto a una imagen ya subida.
func (s *Server) bindProductForm(c *gin.Context, requireImage bool) (domain.Product, bool) {
	name := strings.TrimSpace(c.PostForm("name"))
	categoryID := strings.TrimSpace(c.PostForm("categoryId"))
	rawPrice := strings.TrimSpace(c.PostForm("price"))
	if name == "" || categoryID == "" || rawPrice == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return domain.Product{}, false
	}
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil || price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid price"})
		return domain.Product{}, false
	}

	image := strings.TrimSpace(c.PostForm("image"))
	if file, err := c.FormFile("image"); err == nil {
		image = "uploads/" + newID() + "-" + file.Filename
	}
	if image == "" && requireImage {
		c.JSON(http.StatusBadRequest, gin.H{"message": "image is required"})
		return domain.Product{}, false
	}

	return domain.Product{
		Name:       name,
		Price:      domain.Price(price),
		Image:      image,
		CategoryID: categoryID,
	}, true
}
