package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/kopikita/roastery/internal/types"
)

// TenantMiddleware scopes the request to the tenant resolved upstream from
// the roastery's subdomain and forwarded in the X-Tenant-ID header. Requests
// without the header fall back to the default tenant, which is how local
// single-tenant deployments run.
func TenantMiddleware(c *gin.Context) {
	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}

	ctx := types.SetTenantID(c.Request.Context(), tenantID)
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}
