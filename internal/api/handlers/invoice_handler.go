package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lightmyfireadmin/plombipro-app/internal/facturx"
	"github.com/lightmyfireadmin/plombipro-app/internal/services"
)

// InvoiceHandler serves OCR, Factur-X generation and Chorus Pro submission.
type InvoiceHandler struct {
	ocrService     services.IOCRService
	facturXService services.IFacturXService
	chorusService  services.IChorusProService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(ocrService services.IOCRService, facturXService services.IFacturXService, chorusService services.IChorusProService) *InvoiceHandler {
	return &InvoiceHandler{ocrService: ocrService, facturXService: facturXService, chorusService: chorusService}
}

// ProcessInvoiceOCR handles POST /functions/v1/ocr-process-invoice.
func (h *InvoiceHandler) ProcessInvoiceOCR(c *gin.Context) {
	var in struct {
		ImageBase64 string `json:"image_base64"`
	}
	if !bindBody(c, &in) {
		return
	}

	record, err := h.ocrService.ProcessInvoice(c.Request.Context(), in.ImageBase64)
	if err != nil {
		sendErrorResponse(c, err.Error())
		return
	}
	sendSuccessResponse(c, gin.H{"result": record})
}

// GenerateFacturX handles POST /functions/v1/generate-factur-x.
func (h *InvoiceHandler) GenerateFacturX(c *gin.Context) {
	var in struct {
		Invoice *facturx.Invoice `json:"invoice"`
		Company *facturx.Company `json:"company"`
	}
	if !bindBody(c, &in) {
		return
	}

	result, err := h.facturXService.Generate(c.Request.Context(), in.Invoice, in.Company)
	if err != nil {
		sendErrorResponse(c, err.Error())
		return
	}
	sendSuccessResponse(c, gin.H{"xml_url": result.XMLURL, "xml_content": result.XMLContent})
}

// SubmitChorusPro handles POST /functions/v1/submit-chorus-pro.
func (h *InvoiceHandler) SubmitChorusPro(c *gin.Context) {
	var in struct {
		InvoiceID string `json:"invoice_id"`
	}
	if !bindBody(c, &in) {
		return
	}

	status, err := h.chorusService.Submit(c.Request.Context(), in.InvoiceID)
	if err != nil {
		sendErrorResponse(c, err.Error())
		return
	}
	sendSuccessResponse(c, gin.H{"status": status})
}
