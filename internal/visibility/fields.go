package visibility

// Viewer context keys within the visibility map. These are resolved from the
// caller's role and its relationship to the data; the role hierarchy plays
// no part in field visibility.
const (
	viewerPublic        = "public"
	viewerSelf          = "self"
	viewerPeer          = "peer"
	viewerAffiliate     = "affiliate"
	viewerAdministrator = "administrator"
)

// fieldMap is the per-entity, per-viewer whitelist of attribute names that
// survive into a response. Dotted paths address nested attributes. Filtering
// is visibility-reducing only.
var fieldMap = map[string]map[string][]string{
	"affiliate": {
		viewerPublic: {
			"affiliateId", "firstName", "lastName", "businessName",
			"city", "state", "serviceRadius",
		},
		viewerSelf: {
			"affiliateId", "firstName", "lastName", "email", "phone",
			"businessName", "address", "city", "state", "zipCode",
			"serviceRadius", "commissionRate", "w9Approved", "status",
			"createdAt",
		},
		viewerAdministrator: {
			"affiliateId", "firstName", "lastName", "email", "phone",
			"businessName", "address", "city", "state", "zipCode",
			"serviceRadius", "commissionRate", "w9Approved", "status",
			"createdAt", "updatedAt",
		},
	},
	"customer": {
		viewerPublic: {
			"customerId", "firstName", "lastName",
		},
		viewerPeer: {
			"customerId", "firstName", "lastName",
		},
		viewerSelf: {
			"customerId", "affiliateId", "firstName", "lastName", "email",
			"phone", "address", "city", "state", "zipCode", "createdAt",
		},
		viewerAffiliate: {
			"customerId", "affiliateId", "firstName", "lastName", "email",
			"phone", "address", "city", "state", "zipCode",
		},
		viewerAdministrator: {
			"customerId", "affiliateId", "firstName", "lastName", "email",
			"phone", "address", "city", "state", "zipCode", "active",
			"createdAt", "updatedAt",
		},
	},
	"order": {
		viewerPublic: {
			"orderId", "status",
		},
		viewerSelf: {
			"orderId", "customerId", "status", "pickupDate", "deliveryDate",
			"estimatedWeight", "actualWeight", "total", "bags",
		},
		viewerAffiliate: {
			"orderId", "customerId", "affiliateId", "status", "pickupDate",
			"deliveryDate", "estimatedWeight", "actualWeight", "total",
			"affiliateCut", "bags",
		},
		viewerAdministrator: {
			"orderId", "customerId", "affiliateId", "status", "pickupDate",
			"deliveryDate", "estimatedWeight", "actualWeight", "total",
			"affiliateCut", "bags", "createdAt", "updatedAt",
		},
	},
	"bag": {
		viewerPublic: {
			"barcode", "status",
		},
		viewerAffiliate: {
			"barcode", "status", "weightLb",
		},
		viewerAdministrator: {
			"id", "orderId", "barcode", "status", "weightLb",
		},
	},
}

// AllowedFields resolves the whitelist for an entity/viewer pair, falling
// back to the entity's public set when no explicit viewer entry exists.
// A nil return means the entity type is unmodeled and data passes through
// unchanged (explicit escape hatch, not an oversight).
func AllowedFields(entityType, viewer string) []string {
	viewers, ok := fieldMap[entityType]
	if !ok {
		return nil
	}
	if fields, ok := viewers[viewer]; ok {
		return fields
	}
	return viewers[viewerPublic]
}
