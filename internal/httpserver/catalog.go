package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/domain"
	licenserepo "marketplace-backend/internal/repository/license"
	vendorrepo "marketplace-backend/internal/repository/vendor"
)

func listLicensesHandler(repo licenserepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		licenses, err := repo.ListByUser(c.Request.Context(), uid)
		if err != nil {
			fail(c, err)
			return
		}
		if licenses == nil {
			licenses = []domain.License{}
		}
		c.JSON(http.StatusOK, gin.H{"licenses": licenses})
	}
}

func getVendorHandler(repo vendorrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vendor": v})
	}
}
