package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/salesdesk/internal/config"
	invoicedomain "github.com/smallbiznis/salesdesk/internal/invoice/domain"
	"github.com/smallbiznis/salesdesk/internal/providers/pdf"
)

func ownerOf(c *gin.Context) (invoicedomain.Owner, bool) {
	user, ok := currentUser(c)
	if !ok {
		return invoicedomain.Owner{}, false
	}
	return invoicedomain.Owner{ID: user.ID, Name: user.Name, Login: user.Login}, true
}

func (s *Server) CreateInvoice(c *gin.Context) {
	owner, ok := ownerOf(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req invoicedomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.Generate(c.Request.Context(), owner, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListInvoices(c *gin.Context) {
	owner, ok := ownerOf(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var query struct {
		FromCreatedAt string `form:"from_created_at"`
		ToCreatedAt   string `form:"to_created_at"`
		MinTotal      string `form:"min_total"`
		MaxTotal      string `form:"max_total"`
		PaymentType   string `form:"payment_type"`
		Page          string `form:"page"`
		Limit         string `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	minTotal, err := parseOptionalDecimal(query.MinTotal)
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidMinTotal)
		return
	}
	maxTotal, err := parseOptionalDecimal(query.MaxTotal)
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidMaxTotal)
		return
	}
	page, err := parseOptionalInt(query.Page)
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidPage)
		return
	}
	limit, err := parseOptionalInt(query.Limit)
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidLimit)
		return
	}

	req := invoicedomain.ListRequest{
		FromCreatedAt: strings.TrimSpace(query.FromCreatedAt),
		ToCreatedAt:   strings.TrimSpace(query.ToCreatedAt),
		MinTotal:      minTotal,
		MaxTotal:      maxTotal,
		PaymentType:   strings.TrimSpace(query.PaymentType),
		Limit:         limit,
	}
	if page != nil {
		req.Page = *page
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), owner, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	owner, ok := ownerOf(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.invoiceSvc.Get(c.Request.Context(), owner, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetInvoiceReceipt(c *gin.Context) {
	width, err := parseOptionalInt(c.Query("width"))
	if err != nil {
		AbortWithError(c, invoicedomain.ErrInvalidWidth)
		return
	}

	var opts invoicedomain.ReceiptOptions
	if width != nil {
		if *width == 0 {
			AbortWithError(c, invoicedomain.ErrInvalidWidth)
			return
		}
		opts.Width = *width
	}

	text, err := s.invoiceSvc.Receipt(c.Request.Context(), strings.TrimSpace(c.Param("id")), opts)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (s *Server) GetInvoiceReceiptPDF(c *gin.Context) {
	ctx := c.Request.Context()
	id := strings.TrimSpace(c.Param("id"))

	invoice, err := s.invoiceSvc.Find(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	shop := config.DefaultReceiptConfig()
	if s.receipt != nil {
		shop = s.receipt.Get()
	}

	doc, err := s.pdf.GenerateReceipt(ctx, pdf.NewReceiptData(*invoice, shop))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.obsMetrics.RecordReceiptRender(ctx, "pdf")

	c.Header("Content-Disposition", `inline; filename="receipt-`+invoice.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", body)
}
