package normalizer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"fjacquet/card-recon/internal/currencyutils"
	"fjacquet/card-recon/internal/dateutils"
	"fjacquet/card-recon/internal/logging"
	"fjacquet/card-recon/internal/models"
	"fjacquet/card-recon/internal/parser"
	"fjacquet/card-recon/internal/parsererror"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var errNoStatements = errors.New("no bank or credit card statements in OFX response")

// OFXParser reads OFX/QFX statement downloads. OFX has no notion of
// installments, so every record gets the single-installment token and is
// eligible for matching unless it is a payment.
type OFXParser struct {
	parser.BaseParser
	installmentToken string
}

// NewOFXParser creates an OFXParser.
func NewOFXParser(installmentToken string, logger logging.Logger) *OFXParser {
	return &OFXParser{
		BaseParser:       parser.NewBaseParser("ofx", logger),
		installmentToken: installmentToken,
	}
}

// Parse implements parser.Parser.
func (p *OFXParser) Parse(filePath string) ([]models.TransactionRecord, models.NormalizeStats, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, models.NormalizeStats{}, parsererror.Wrap(filePath, parsererror.StageOpen, err)
	}
	defer func() { _ = file.Close() }()

	resp, err := ofxgo.ParseResponse(file)
	if err != nil {
		return nil, models.NormalizeStats{}, parsererror.Wrap(filePath, parsererror.StageRead,
			fmt.Errorf("error parsing OFX: %w", err))
	}
	if len(resp.Bank) == 0 && len(resp.CreditCard) == 0 {
		return nil, models.NormalizeStats{}, parsererror.Wrap(filePath, parsererror.StageExtract, errNoStatements)
	}

	var stats models.NormalizeStats
	records := []models.TransactionRecord{}
	for _, msg := range append(resp.Bank, resp.CreditCard...) {
		var list *ofxgo.TransactionList
		switch stmt := msg.(type) {
		case *ofxgo.StatementResponse:
			list = stmt.BankTranList
		case *ofxgo.CCStatementResponse:
			list = stmt.BankTranList
		default:
			p.GetLogger().Warn("Skipping unexpected OFX message",
				logging.F(logging.FieldFile, filePath),
				logging.F(logging.FieldValue, fmt.Sprintf("%T", msg)))
			continue
		}
		if list == nil {
			continue
		}

		for i, tr := range list.Transactions {
			stats.RowsRead++
			if tr.DtPosted.Time.IsZero() {
				stats.DroppedNoDate++
				p.GetLogger().WithError(&parsererror.DataExtractionError{
					FilePath:  filePath,
					FieldName: "DTPOSTED",
					Row:       i + 1,
					Reason:    "transaction has no posted date",
				}).Warn("Dropping OFX transaction without a posted date",
					logging.F(logging.FieldFile, filePath),
					logging.F(logging.FieldRow, i+1),
					logging.F(logging.FieldValue, string(tr.FiTID)))
				continue
			}

			amount, err := decimal.NewFromString(tr.TrnAmt.String())
			if err != nil {
				stats.CoercedAmounts++
				p.GetLogger().WithError(&parsererror.ParseError{
					Source: filePath,
					Field:  "TRNAMT",
					Value:  tr.TrnAmt.String(),
					Err:    err,
				}).Warn("Amount could not be parsed, using 0",
					logging.F(logging.FieldFile, filePath),
					logging.F(logging.FieldRow, i+1),
					logging.F(logging.FieldValue, tr.TrnAmt.String()))
				amount = decimal.Zero
			}

			description := strings.TrimSpace(string(tr.Name))
			if description == "" {
				description = strings.TrimSpace(string(tr.Memo))
			}

			stats.RowsKept++
			records = append(records, models.TransactionRecord{
				Date:            dateutils.StartOfDay(tr.DtPosted.Time),
				CardType:        models.CardTypeOFX,
				Description:     description,
				InstallmentPlan: p.installmentToken,
				Amount:          currencyutils.ToWholeUnits(amount),
			})
		}
	}

	return records, stats, nil
}
