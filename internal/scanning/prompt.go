package scanning

// receiptScanPrompt is the shared prompt used by all LLM providers for scanning receipts
const receiptScanPrompt = `You are reading a store receipt. Carefully read all text in the image and extract:

1. **Retailer**: the store or business name printed at the top of the receipt, e.g. "Target", "Walgreens", "M&M Corner Market".

2. **Purchase date**: the transaction date in ISO 8601 format (YYYY-MM-DD).

3. **Purchase time**: the transaction time in 24-hour format (HH:MM).

4. **Items**: every purchased line item, in the order printed, with its short description as printed and its price as a number (e.g. 6.49 for $6.49). Do not include subtotal, tax, total, payment or change lines.

Return ONLY valid JSON in this exact format:
{
  "retailer": "Store Name",
  "purchaseDate": "YYYY-MM-DD",
  "purchaseTime": "HH:MM",
  "items": [
    {"shortDescription": "Item description", "price": 0.00}
  ]
}

Important:
- Prices must be numbers (not strings), in dollars and cents
- If you cannot find the date or time, use an empty string for that field
- Do not include any text before or after the JSON
- Do not use markdown code blocks`
