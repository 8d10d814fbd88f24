package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PrimeOps API",
        "description": "Office management API covering lead lifecycle, admissions and accounting",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Authentication and session"},
        {"name": "Leads", "description": "Lead intake, listing and assignment"},
        {"name": "Admission", "description": "Pipeline transitions and fee submission"},
        {"name": "Accounting", "description": "Fee review and the finance ledger"},
        {"name": "Catalog", "description": "Courses and batches"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "security": [{"BearerAuth": []}],
                "summary": "Get the authenticated user profile",
                "responses": {
                    "200": {"description": "Profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leads": {
            "post": {
                "tags": ["Leads"],
                "security": [{"BearerAuth": []}],
                "summary": "Create a lead",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLeadRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate contact within the dedupe window", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Leads"],
                "security": [{"BearerAuth": []}],
                "summary": "List leads",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "assignedTo", "in": "query", "type": "string"},
                    {"name": "source", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Leads", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leads/bulk": {
            "post": {
                "tags": ["Leads"],
                "security": [{"BearerAuth": []}],
                "summary": "Bulk import leads from CSV",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "Import result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leads/{id}/assign": {
            "post": {
                "tags": ["Leads"],
                "security": [{"BearerAuth": []}],
                "summary": "Assign a lead to an admission member",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignLeadRequest"}}
                ],
                "responses": {
                    "200": {"description": "Assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Lead not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Leads"],
                "security": [{"BearerAuth": []}],
                "summary": "Assign a lead to an admission member",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignLeadRequest"}}
                ],
                "responses": {
                    "200": {"description": "Assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Lead not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admission/leads": {
            "get": {
                "tags": ["Admission"],
                "security": [{"BearerAuth": []}],
                "summary": "List leads visible to the caller",
                "responses": {
                    "200": {"description": "Leads", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admission/leads/{id}/status": {
            "patch": {
                "tags": ["Admission"],
                "security": [{"BearerAuth": []}],
                "summary": "Move a lead through the pipeline",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated lead", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Disallowed transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the lead owner", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admission/fees": {
            "post": {
                "tags": ["Admission"],
                "security": [{"BearerAuth": []}],
                "summary": "Submit an admission fee for an admitted lead",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitFeeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Pending fee", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Lead is not admitted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Admission"],
                "security": [{"BearerAuth": []}],
                "summary": "List fee submissions visible to the caller",
                "responses": {
                    "200": {"description": "Fees", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/accounting/fees": {
            "get": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "List fee submissions for review",
                "responses": {
                    "200": {"description": "Fees", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/accounting/fees/{id}/approve": {
            "patch": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "Approve a pending fee and record the income",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Approved fee", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Fee already decided", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/accounting/fees/{id}/reject": {
            "patch": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "Reject a pending fee",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Rejected fee", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Fee already decided", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/accounting/income": {
            "post": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "Record a manual income entry",
                "responses": {
                    "201": {"description": "Income entry", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "List the income ledger",
                "responses": {
                    "200": {"description": "Income entries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/accounting/expense": {
            "post": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "Record an expense entry",
                "responses": {
                    "201": {"description": "Expense entry", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "List the expense ledger",
                "responses": {
                    "200": {"description": "Expense entries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/accounting/expense/{id}": {
            "delete": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete an expense entry",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/accounting/summary": {
            "get": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "Financial summary over a date window",
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/accounting/summary/export": {
            "get": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "Export the financial summary",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "Queue a report export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Report job queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Accounting"],
                "security": [{"BearerAuth": []}],
                "summary": "Get report job status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Report job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Accounting"],
                "summary": "Download a rendered report by signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Catalog"],
                "security": [{"BearerAuth": []}],
                "summary": "List active courses",
                "responses": {
                    "200": {"description": "Courses", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches": {
            "get": {
                "tags": ["Catalog"],
                "security": [{"BearerAuth": []}],
                "summary": "List batches",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Batches", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batches/{id}/students": {
            "get": {
                "tags": ["Catalog"],
                "security": [{"BearerAuth": []}],
                "summary": "List the roster for a batch",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Roster", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateLeadRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "interested_course": {"type": "string"},
                "source": {"type": "string"}
            }
        },
        "AssignLeadRequest": {
            "type": "object",
            "required": ["assigned_to"],
            "properties": {
                "assigned_to": {"type": "string"}
            }
        },
        "TransitionRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string"},
                "notes": {"type": "string"},
                "course_id": {"type": "string"},
                "batch_id": {"type": "string"},
                "next_follow_up_date": {"type": "string", "format": "date-time"}
            }
        },
        "SubmitFeeRequest": {
            "type": "object",
            "required": ["lead_id", "course_name", "amount", "method", "payment_date"],
            "properties": {
                "lead_id": {"type": "string"},
                "course_name": {"type": "string"},
                "amount": {"type": "number"},
                "method": {"type": "string"},
                "payment_date": {"type": "string", "format": "date-time"},
                "note": {"type": "string"}
            }
        },
        "CreateReportRequest": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "type": {"type": "string", "enum": ["financial_summary", "lead_pipeline"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "from": {"type": "string", "format": "date-time"},
                "to": {"type": "string", "format": "date-time"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
