package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	chart "github.com/wcharczuk/go-chart/v2"
	"gorm.io/gorm"

	"github.com/crtzn/grill-house-realtime-ordering-sub000/services"
	"github.com/crtzn/grill-house-realtime-ordering-sub000/utils"
)

type ReportController struct {
	DB      *gorm.DB
	Reports *services.ReportService
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db, Reports: services.NewReportService(db)}
}

// parseRange membaca query from/to (YYYY-MM-DD); default 30 hari terakhir
func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, errors.New("invalid 'from' date, expected YYYY-MM-DD")
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, errors.New("invalid 'to' date, expected YYYY-MM-DD")
		}
		// inklusif sampai akhir hari
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}

// GetSalesSummary -> ringkasan penjualan JSON per rentang tanggal
func (rc *ReportController) GetSalesSummary(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	summary, err := rc.Reports.SalesSummary(from, to)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales summary", summary)
}

// GetReceipt -> struk JSON untuk satu sesi terminated
func (rc *ReportController) GetReceipt(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	receipt, err := rc.Reports.BuildReceipt(uint(orderID))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Receipt detail", receipt)
}

// GetReceiptPDF -> struk satu sesi sebagai PDF untuk dicetak
func (rc *ReportController) GetReceiptPDF(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	receipt, err := rc.Reports.BuildReceipt(uint(orderID))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Grill House", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Struk #%06d - Meja %s", receipt.Order.ID, receipt.Order.Table.TableNumber), "", 1, "C", false, 0, "")
	if receipt.Order.TerminatedAt != nil {
		pdf.CellFormat(0, 5, receipt.Order.TerminatedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	line := func(l services.ReceiptLine) {
		pdf.CellFormat(70, 5, fmt.Sprintf("%dx %s", l.Quantity, l.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, utils.FormatCurrency(l.Subtotal), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 5, "Paket", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	line(receipt.PackageLine)

	if len(receipt.Items) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, "Item (tercakup paket)", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, it := range receipt.Items {
			line(it)
		}
	}
	if len(receipt.Addons) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, "Add-on", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, ad := range receipt.Addons {
			line(ad)
		}
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(70, 7, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, utils.FormatCurrency(receipt.Total), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Ln(2)
	pdf.CellFormat(0, 5, "Terima kasih atas kunjungan Anda!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%d.pdf", receipt.Order.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// GetSalesChart -> bar chart PNG revenue per paket untuk dashboard admin
func (rc *ReportController) GetSalesChart(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	summary, err := rc.Reports.SalesSummary(from, to)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if len(summary.Packages) == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("no sales in range"))
		return
	}

	bars := make([]chart.Value, 0, len(summary.Packages))
	for _, p := range summary.Packages {
		bars = append(bars, chart.Value{Label: p.PackageName, Value: p.Revenue})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Revenue per paket %s s/d %s", from.Format("02 Jan"), to.Format("02 Jan")),
		Height:   400,
		BarWidth: 60,
		Bars:     bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
