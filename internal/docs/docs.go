// Package docs holds the OpenAPI description served at /swagger. Regenerate
// with: swag init -g cmd/api/main.go -o internal/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/current": {
            "get": {
                "description": "Get the navigation pointer and the active period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Get current period",
                "responses": {
                    "200": {
                        "description": "Current and active period",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "current_period": {
                                    "type": "string"
                                },
                                "active_period": {
                                    "type": "string"
                                }
                            }
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/current/income": {
            "post": {
                "description": "Append an income source to the current period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "items"
                ],
                "summary": "Add an income source",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Income source",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.AddIncomeItemRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Item added",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "item": {
                                    "$ref": "#/definitions/models.IncomeItem"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Current period is archived",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/current/expenses/{kind}": {
            "post": {
                "description": "Append an expense to an expense bucket of the current period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "items"
                ],
                "summary": "Add an expense",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "enum": [
                            "fixed_expenses",
                            "variable_expenses",
                            "extra_expenses"
                        ],
                        "type": "string",
                        "description": "Expense bucket",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Expense",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.AddExpenseItemRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Item added",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "item": {
                                    "$ref": "#/definitions/models.ExpenseItem"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Current period is archived",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/current/{kind}/items/{itemId}": {
            "patch": {
                "description": "Change the amount of an item in the current period and recompute the total",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "items"
                ],
                "summary": "Change an item amount",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bucket kind",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Item ID",
                        "name": "itemId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "New amount",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.SetAmountRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Item updated",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "message": {
                                    "type": "string"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Current period is archived",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Item not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            },
            "delete": {
                "description": "Delete an item from the current period and recompute the total",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "items"
                ],
                "summary": "Remove an item",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Bucket kind",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Item ID",
                        "name": "itemId",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Item deleted",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "message": {
                                    "type": "string"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Current period is archived",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Item not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/current/{kind}/items/{itemId}/paid": {
            "post": {
                "description": "Record or clear the payment of an expense item in the current period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "items"
                ],
                "summary": "Mark an expense paid",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Expense bucket",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Item ID",
                        "name": "itemId",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Payment flag",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.MarkPaidRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Item updated",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "message": {
                                    "type": "string"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Current period is archived",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Item not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/events": {
            "get": {
                "description": "List recorded period events, newest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "events"
                ],
                "summary": "List events",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Filter by period (YYYY_MM)",
                        "name": "period",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Filter by event type",
                        "name": "type",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 1,
                        "description": "Page number",
                        "name": "page",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 50,
                        "description": "Items per page",
                        "name": "page_size",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Events",
                        "schema": {
                            "$ref": "#/definitions/pagination.PageResponse-models_AuditLog"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/periods": {
            "get": {
                "description": "List every known period, most recent first, with navigation flags",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "List periods",
                "responses": {
                    "200": {
                        "description": "Periods",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "periods": {
                                    "type": "array",
                                    "items": {
                                        "$ref": "#/definitions/services.PeriodInfo"
                                    }
                                }
                            }
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            },
            "post": {
                "description": "Clone a period in the Preparing state from source, or from the most recent complete period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Create a period",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Target and optional source period",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.CreatePeriodRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Period created",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "period": {
                                    "$ref": "#/definitions/services.PeriodInfo"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Source period not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Period already exists",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Too far in the future or nothing to clone",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/periods/{id}": {
            "delete": {
                "description": "Back up and delete an archived period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "maintenance"
                ],
                "summary": "Purge a period",
                "security": [
                    {
                        "MaintenanceKey": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period (YYYY_MM)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Period purged",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "message": {
                                    "type": "string"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid period",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Invalid API key",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Period is not archived",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Maintenance disabled",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/periods/{id}/activate": {
            "post": {
                "description": "Make a Preparing period the active one; the previous active period is archived",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Activate a period",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period (YYYY_MM)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Period activated",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "period": {
                                    "$ref": "#/definitions/services.PeriodInfo"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid period",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Invalid transition",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/periods/{id}/unlock": {
            "post": {
                "description": "Make an archived period editable; a backup is written first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Unlock a period",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period (YYYY_MM)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Period unlocked",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "period": {
                                    "$ref": "#/definitions/services.PeriodInfo"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid period",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Invalid transition or unlock limit reached",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/periods/{id}/lock": {
            "post": {
                "description": "Archive an unlocked period again",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Lock a period",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period (YYYY_MM)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Period locked",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "period": {
                                    "$ref": "#/definitions/services.PeriodInfo"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid period",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Invalid transition",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/periods/{id}/switch": {
            "post": {
                "description": "Move the navigation pointer; intent \"edit\" unlocks archived periods",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Switch to a period",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period (YYYY_MM)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Navigation intent (view or edit)",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/handlers.SwitchPeriodRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Switched",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "period": {
                                    "$ref": "#/definitions/services.PeriodInfo"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Unlock limit reached",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/periods/{id}/integrity": {
            "get": {
                "description": "List the buckets a period is missing",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "periods"
                ],
                "summary": "Check period integrity",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period (YYYY_MM)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Integrity report",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "integrity": {
                                    "$ref": "#/definitions/models.IntegrityReport"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid period",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/periods/{id}/buckets": {
            "get": {
                "description": "Get every bucket stored for a period and the kinds it is missing",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "buckets"
                ],
                "summary": "Get period buckets",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period (YYYY_MM)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Buckets",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "period": {
                                    "type": "string"
                                },
                                "buckets": {
                                    "type": "object"
                                },
                                "integrity": {
                                    "$ref": "#/definitions/models.IntegrityReport"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid period",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/periods/{id}/buckets/{kind}": {
            "get": {
                "description": "Get one bucket of a period",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "buckets"
                ],
                "summary": "Get a bucket",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period (YYYY_MM)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "enum": [
                            "income",
                            "fixed_expenses",
                            "variable_expenses",
                            "extra_expenses",
                            "configuration",
                            "user_profile",
                            "reports"
                        ],
                        "type": "string",
                        "description": "Bucket kind",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Bucket",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "kind": {
                                    "type": "string"
                                },
                                "document": {
                                    "type": "object"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Period or bucket not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            },
            "put": {
                "description": "Replace one bucket of an editable period with the given document",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "buckets"
                ],
                "summary": "Replace a bucket",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Period (YYYY_MM)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "enum": [
                            "income",
                            "fixed_expenses",
                            "variable_expenses",
                            "extra_expenses",
                            "configuration",
                            "user_profile",
                            "reports"
                        ],
                        "type": "string",
                        "description": "Bucket kind",
                        "name": "kind",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Bucket document",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Bucket saved",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "kind": {
                                    "type": "string"
                                },
                                "document": {
                                    "type": "object"
                                }
                            }
                        }
                    },
                    "400": {
                        "description": "Invalid document",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Period is archived",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Period not found",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/purge-candidates": {
            "get": {
                "description": "List archived periods older than the retention horizon",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "maintenance"
                ],
                "summary": "List purge candidates",
                "security": [
                    {
                        "MaintenanceKey": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Candidate periods",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "candidates": {
                                    "type": "array",
                                    "items": {
                                        "type": "string"
                                    }
                                }
                            }
                        }
                    },
                    "401": {
                        "description": "Invalid API key",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Maintenance disabled",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/rollover/check": {
            "post": {
                "description": "Archive the active period when the calendar has moved on and activate the calendar period if it exists",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "maintenance"
                ],
                "summary": "Check month rollover",
                "security": [
                    {
                        "MaintenanceKey": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Rollover result",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "rollover": {
                                    "$ref": "#/definitions/services.RolloverResult"
                                }
                            }
                        }
                    },
                    "401": {
                        "description": "Invalid API key",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Maintenance disabled",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/system": {
            "get": {
                "description": "Diagnostic snapshot of the store, its periods and policy",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "Get system state",
                "responses": {
                    "200": {
                        "description": "System state",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "system": {
                                    "$ref": "#/definitions/services.SystemState"
                                }
                            }
                        }
                    },
                    "500": {
                        "description": "Server error",
                        "schema": {
                            "$ref": "#/definitions/handlers.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {
                            "type": "string"
                        },
                        "message": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "handlers.CreatePeriodRequest": {
            "type": "object",
            "required": [
                "target"
            ],
            "properties": {
                "target": {
                    "type": "string",
                    "example": "2025_02"
                },
                "source": {
                    "type": "string",
                    "example": "2025_01"
                }
            }
        },
        "handlers.SwitchPeriodRequest": {
            "type": "object",
            "properties": {
                "intent": {
                    "type": "string",
                    "enum": [
                        "view",
                        "edit"
                    ]
                }
            }
        },
        "handlers.AddIncomeItemRequest": {
            "type": "object",
            "required": [
                "source"
            ],
            "properties": {
                "source": {
                    "type": "string",
                    "maxLength": 200,
                    "minLength": 1
                },
                "amount": {
                    "type": "string",
                    "example": "0"
                },
                "active": {
                    "type": "boolean"
                }
            }
        },
        "handlers.AddExpenseItemRequest": {
            "type": "object",
            "required": [
                "category"
            ],
            "properties": {
                "category": {
                    "type": "string",
                    "maxLength": 200,
                    "minLength": 1
                },
                "amount": {
                    "type": "string",
                    "example": "0"
                },
                "active": {
                    "type": "boolean"
                }
            }
        },
        "handlers.SetAmountRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string",
                    "example": "0"
                }
            }
        },
        "handlers.MarkPaidRequest": {
            "type": "object",
            "required": [
                "paid"
            ],
            "properties": {
                "paid": {
                    "type": "boolean"
                }
            }
        },
        "models.IncomeItem": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "source": {
                    "type": "string"
                },
                "amount": {
                    "type": "string",
                    "example": "0"
                },
                "active": {
                    "type": "boolean"
                }
            }
        },
        "models.ExpenseItem": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                },
                "amount": {
                    "type": "string",
                    "example": "0"
                },
                "active": {
                    "type": "boolean"
                },
                "paid": {
                    "type": "boolean"
                },
                "paid_at": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "models.IntegrityReport": {
            "type": "object",
            "properties": {
                "period": {
                    "type": "string"
                },
                "complete": {
                    "type": "boolean"
                },
                "missing_kinds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "models.AuditLog": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "event_type": {
                    "type": "string"
                },
                "period": {
                    "type": "string"
                },
                "source_period": {
                    "type": "string"
                },
                "bucket_kind": {
                    "type": "string"
                },
                "error_code": {
                    "type": "string"
                },
                "payload": {
                    "type": "string"
                }
            }
        },
        "pagination.PageResponse-models_AuditLog": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.AuditLog"
                    }
                },
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_items": {
                    "type": "integer"
                },
                "total_pages": {
                    "type": "integer"
                }
            }
        },
        "services.PeriodInfo": {
            "type": "object",
            "properties": {
                "period": {
                    "type": "string"
                },
                "state": {
                    "type": "string",
                    "enum": [
                        "preparing",
                        "active",
                        "archived",
                        "unlocked"
                    ]
                },
                "is_editable": {
                    "type": "boolean"
                },
                "is_current": {
                    "type": "boolean"
                },
                "is_active": {
                    "type": "boolean"
                },
                "display_name": {
                    "type": "string"
                },
                "can_activate": {
                    "type": "boolean"
                },
                "can_unlock": {
                    "type": "boolean"
                },
                "can_switch": {
                    "type": "boolean"
                }
            }
        },
        "services.RolloverResult": {
            "type": "object",
            "properties": {
                "calendar_period": {
                    "type": "string"
                },
                "previous_active": {
                    "type": "string"
                },
                "archived": {
                    "type": "boolean"
                },
                "activated": {
                    "type": "boolean"
                },
                "requires_manual_creation": {
                    "type": "boolean"
                }
            }
        },
        "services.Policy": {
            "type": "object",
            "properties": {
                "max_future_periods": {
                    "type": "integer"
                },
                "max_unlocked_periods": {
                    "type": "integer"
                },
                "retention_months": {
                    "type": "integer"
                },
                "autosave_interval": {
                    "type": "integer"
                },
                "rollover_interval": {
                    "type": "integer"
                }
            }
        },
        "services.SystemState": {
            "type": "object",
            "properties": {
                "is_initialized": {
                    "type": "boolean"
                },
                "current_period": {
                    "type": "string"
                },
                "active_period": {
                    "type": "string"
                },
                "calendar_period": {
                    "type": "string"
                },
                "pending_rollover": {
                    "type": "string"
                },
                "total_periods": {
                    "type": "integer"
                },
                "autosave_running": {
                    "type": "boolean"
                },
                "periods": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/services.PeriodInfo"
                    }
                },
                "policy": {
                    "$ref": "#/definitions/services.Policy"
                }
            }
        }
    },
    "securityDefinitions": {
        "MaintenanceKey": {
            "description": "Key configured in MAINTENANCE_API_KEY.",
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "WiseSpend API",
	Description:      "WiseSpend keeps a household budget partitioned by calendar month, with a lifecycle for each period.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
