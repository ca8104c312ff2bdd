package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExcelHandler struct {
	excelService service.ExcelService
}

// NewExcelHandler sets up the routing dependencies for workbook uploads
func NewExcelHandler(excelService service.ExcelService) *ExcelHandler {
	return &ExcelHandler{excelService: excelService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ExcelHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/process-excel", middleware.RequireAuth(), h.ProcessExcel)
}

// ProcessExcel handles POST /process-excel to turn a workbook into a submission draft
// @Summary      Parse an Excel workbook
// @Description  Parses an uploaded .xlsx/.xlsm workbook into a transaction submission draft. Nothing is persisted.
// @Tags         transactions
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Excel workbook"
// @Success      200   {object}  response.Response{data=service.SubmitTransactionRequest}
// @Failure      400   {object}  response.Response
// @Router       /process-excel [post]
func (h *ExcelHandler) ProcessExcel(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing 'file' form field"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read uploaded file"))
		return
	}
	defer file.Close()

	draft, err := h.excelService.Parse(file, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, draft))
}
