package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Storefront Availability API",
        "description": "Store opening hours and product availability across timezones.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Availability", "description": "Store and product availability verdicts"},
        {"name": "Cache", "description": "Schedule snapshot maintenance"},
        {"name": "System", "description": "Health and metrics"}
    ],
    "paths": {
        "/stores/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Store open/closed verdict",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "at", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "tz", "in": "query", "type": "string"},
                    {"name": "X-Timezone", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StoreAvailabilityEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Store not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stores/{id}/closures": {
            "get": {
                "tags": ["Availability"],
                "summary": "Download closed ranges (enabled with ENABLE_EXPORTS)",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "at", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "tz", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Store not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/products/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "Product availability verdict",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "at", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "tz", "in": "query", "type": "string"},
                    {"name": "X-Timezone", "in": "header", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ProductAvailabilityEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Product not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/convert": {
            "post": {
                "tags": ["Availability"],
                "summary": "Project weekly hours into another timezone",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConvertHoursRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/availability/cache/{kind}/{id}": {
            "delete": {
                "tags": ["Cache"],
                "summary": "Drop a cached schedule snapshot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string", "enum": ["store", "product"]},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Dropped", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Dropped and warm-up queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/metrics/summary": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated service metrics",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Interval": {
            "type": "object",
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"}
            }
        },
        "StoreAvailability": {
            "type": "object",
            "properties": {
                "storeId": {"type": "string"},
                "storeName": {"type": "string"},
                "timezone": {"type": "string"},
                "evaluatedAt": {"type": "string", "format": "date-time"},
                "isOpen": {"type": "boolean"},
                "nextOpen": {"type": "string", "format": "date-time"},
                "closedOn": {"type": "array", "items": {"$ref": "#/definitions/Interval"}},
                "dstWarnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ProductAvailability": {
            "type": "object",
            "properties": {
                "productId": {"type": "string"},
                "productName": {"type": "string"},
                "evaluatedAt": {"type": "string", "format": "date-time"},
                "available": {"type": "boolean"},
                "nextAvailable": {"type": "string", "format": "date-time"},
                "status": {"type": "string"},
                "windows": {"type": "array", "items": {"type": "object"}}
            }
        },
        "WeeklyWindow": {
            "type": "object",
            "required": ["dayOfWeek", "openTime", "closeTime"],
            "properties": {
                "dayOfWeek": {"type": "integer", "minimum": 0, "maximum": 6},
                "openTime": {"type": "string", "example": "09:00"},
                "closeTime": {"type": "string", "example": "17:00"},
                "isOpen": {"type": "boolean"},
                "closesNextDay": {"type": "boolean"},
                "dstAware": {"type": "boolean"}
            }
        },
        "ConvertHoursRequest": {
            "type": "object",
            "required": ["windows", "sourceTimezone", "targetTimezone"],
            "properties": {
                "windows": {"type": "array", "items": {"$ref": "#/definitions/WeeklyWindow"}},
                "sourceTimezone": {"type": "string"},
                "targetTimezone": {"type": "string"},
                "referenceDate": {"type": "string", "format": "date"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "StoreAvailabilityEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/StoreAvailability"},
                "meta": {"type": "object"}
            }
        },
        "ProductAvailabilityEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/ProductAvailability"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
