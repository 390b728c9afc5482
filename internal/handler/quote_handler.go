package handler

import (
	"bytes"
	"net/http"

	"github.com/Brunomperetti/catalogo-repuestos/internal/quote"
	"github.com/Brunomperetti/catalogo-repuestos/pkg/logger"
	"github.com/Brunomperetti/catalogo-repuestos/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// QuoteRequest is the JSON body of the order-quote endpoint.
type QuoteRequest struct {
	Empresa string       `json:"empresa"`
	Items   []quote.Item `json:"items"`
}

// PedidoPdf renders the client-side cart as a PDF quote and streams it
// back as an attachment.
func PedidoPdf(c echo.Context) error {
	log := logger.FromContext(c)

	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid quote request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Pedido inválido",
		})
	}
	if req.Empresa == "" {
		req.Empresa = "Pedido de Cliente"
	}

	var buf bytes.Buffer
	if err := quote.Render(&buf, req.Empresa, req.Items); err != nil {
		log.Error("Quote PDF rendering failed",
			zap.String("empresa", req.Empresa),
			zap.Int("items", len(req.Items)),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error al generar el PDF",
		})
	}

	prometheus.RecordQuotePdf()
	log.Info("Quote PDF generated",
		zap.String("empresa", req.Empresa),
		zap.Int("items", len(req.Items)),
		zap.String("total", quote.Total(req.Items).StringFixed(2)))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=`+quote.Filename)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}
