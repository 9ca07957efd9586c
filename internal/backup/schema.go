package backup

// backupSchema validates an import payload before any row is written.
// Amounts are non-negative integers; unknown fields are tolerated so older
// exports keep importing.
const backupSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "funerals"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "exported_at": {"type": "string"},
    "funerals": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["family_name", "deceased_name", "funeral_date"],
        "properties": {
          "id": {"type": "string"},
          "family_name": {"type": "string", "minLength": 1},
          "deceased_name": {"type": "string", "minLength": 1},
          "relationship": {"type": ["string", "null"]},
          "funeral_date": {"type": "string"},
          "venue": {"type": ["string", "null"]},
          "notes": {"type": "string"},
          "status": {"type": "string", "enum": ["PLANNED", "ACTIVE", "COMPLETED"]},
          "donations": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "id": {"type": "string"},
                "full_name": {"type": "string"},
                "last_name": {"type": ["string", "null"]},
                "first_name": {"type": ["string", "null"]},
                "relationship": {"type": ["string", "null"]},
                "address": {"type": "string"},
                "amount": {"type": "integer", "minimum": 0},
                "enclosed_amount": {"type": "integer", "minimum": 0},
                "donation_type": {"type": "string"},
                "donation_category": {"type": "string"},
                "company_name": {"type": "string"},
                "position": {"type": "string"},
                "co_names": {"type": "array", "items": {"type": "string"}},
                "notes": {"type": "string"},
                "ocr_results": {"type": "object", "additionalProperties": {"type": "string"}},
                "ocr_provider": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`
