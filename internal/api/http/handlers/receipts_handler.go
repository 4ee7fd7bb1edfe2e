package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gatelaunch/internal/api/dto"
	"github.com/spec-kit/gatelaunch/internal/service"
)

// ReceiptsHandler manages payment receipt and proof upload endpoints.
type ReceiptsHandler struct {
	receipts *service.ReceiptService
	proofs   *service.ProofService
}

// NewReceiptsHandler constructs handler.
func NewReceiptsHandler(receipts *service.ReceiptService, proofs *service.ProofService) *ReceiptsHandler {
	return &ReceiptsHandler{receipts: receipts, proofs: proofs}
}

// List GET /api/payment-receipts.
func (h *ReceiptsHandler) List(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	items, err := h.receipts.List(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"receipts": items})
}

// Create POST /api/payment-receipts.
func (h *ReceiptsHandler) Create(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.CreateReceiptRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	receipt, err := h.receipts.Create(c.UserContext(), principal, service.ReceiptCreateInput{
		Method:     req.Method,
		Receiver:   req.Receiver,
		Sender:     req.Sender,
		Amount:     float64(req.Amount),
		PaymentRef: req.PaymentRef,
		Note:       req.Note,
		ProofURL:   req.ProofURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"receipt": receipt})
}

// UploadProof POST /api/uploads/proof. The raw body is the image and
// X-Filename carries the original name.
func (h *ReceiptsHandler) UploadProof(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	url, err := h.proofs.Save(c.UserContext(), principal, c.Get("X-Filename"), c.Body())
	if err != nil {
		return err
	}
	return c.JSON(dto.ProofUploadResponse{FileURL: url})
}

// DownloadProof GET /api/uploads/proof/:fileName.
func (h *ReceiptsHandler) DownloadProof(c *fiber.Ctx) error {
	principal, err := caller(c)
	if err != nil {
		return err
	}
	path, err := h.proofs.Open(c.UserContext(), principal, c.Params("fileName"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.SendFile(path)
}
