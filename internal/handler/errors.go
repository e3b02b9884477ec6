package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/terrep263/lakedirectory-sub002/internal/domain"
	"github.com/terrep263/lakedirectory-sub002/internal/service"
	"github.com/terrep263/lakedirectory-sub002/pkg/response"
)

// errorCodes maps domain sentinels onto API error codes. Order matters only
// for readability; sentinels are disjoint.
var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrCountyContextRequired, response.ErrCodeCountyContextRequired},
	{domain.ErrCountyNotFound, response.ErrCodeCountyNotFound},
	{domain.ErrCountyInactive, response.ErrCodeCountyInactive},
	{domain.ErrBusinessNotFound, response.ErrCodeBusinessNotFound},
	{domain.ErrBusinessNotActive, response.ErrCodeBusinessNotActive},

	{domain.ErrDealNotFound, response.ErrCodeDealNotFound},
	{domain.ErrInvalidDealTransition, response.ErrCodeInvalidDealTransition},
	{domain.ErrNotDealOwner, response.ErrCodeNotDealOwner},
	{domain.ErrDealNotInactive, response.ErrCodeDealNotInactive},
	{domain.ErrInvalidPricing, response.ErrCodeInvalidPricing},
	{domain.ErrCannotDeleteWithVouchers, response.ErrCodeCannotDeleteWithVouchers},
	{domain.ErrDealNotActive, response.ErrCodeDealNotActive},
	{domain.ErrDealExpired, response.ErrCodeDealExpired},
	{domain.ErrQuantityLimitExceeded, response.ErrCodeQuantityLimitExceeded},

	{domain.ErrPurchaseNotFound, response.ErrCodePurchaseNotFound},
	{domain.ErrPaymentIntentAlreadyUsed, response.ErrCodePaymentIntentAlreadyUsed},
	{domain.ErrNoAvailableVouchers, response.ErrCodeNoAvailableVouchers},
	{domain.ErrDoubleAssignmentPrevented, response.ErrCodeDoubleAssignmentPrevented},
	{domain.ErrPurchaseTransactionFailed, response.ErrCodePurchaseTransactionFailed},

	{domain.ErrVoucherNotFound, response.ErrCodeVoucherNotFound},
	{domain.ErrVoucherNotAssigned, response.ErrCodeVoucherNotAssigned},
	{domain.ErrAlreadyRedeemed, response.ErrCodeAlreadyRedeemed},
	{domain.ErrInvalidForBusiness, response.ErrCodeInvalidForBusiness},

	{domain.ErrReviewTaskNotFound, response.ErrCodeReviewTaskNotFound},
	{service.ErrCountySlugTaken, response.ErrCodeConflict},
}

// writeError translates a service error into the envelope and status the API
// contract promises. Unrecognized errors become opaque 500s.
func writeError(c *gin.Context, err error) {
	var missing *domain.MissingFieldsError
	if errors.As(err, &missing) {
		resp := response.ErrorWithDetails(
			response.ErrCodeMissingRequiredFields,
			err.Error(),
			map[string]string{"fields": strings.Join(missing.Fields, ",")},
		)
		c.JSON(response.GetHTTPStatus(response.ErrCodeMissingRequiredFields), resp)
		return
	}

	var exceeded *domain.AllowanceExceededError
	if errors.As(err, &exceeded) {
		resp := response.ErrorWithDetails(
			response.ErrCodeAllowanceExceeded,
			err.Error(),
			map[string]string{
				"allowance": strconv.Itoa(exceeded.Allowance),
				"issued":    strconv.Itoa(exceeded.Issued),
				"requested": strconv.Itoa(exceeded.Requested),
				"remaining": strconv.Itoa(exceeded.Remaining()),
				"excess":    strconv.Itoa(exceeded.Excess()),
			},
		)
		c.JSON(response.GetHTTPStatus(response.ErrCodeAllowanceExceeded), resp)
		return
	}

	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			c.JSON(response.GetHTTPStatus(entry.code), response.Error(entry.code, err.Error()))
			return
		}
	}

	c.JSON(response.GetHTTPStatus(response.ErrCodeInternalError), response.InternalError(""))
}
