package extractor

const systemPrompt = `You are an intelligent assistant that extracts structured data from customer service conversations.`

const extractionUserPrompt = `Extract the following information from the conversation below:
- email: Email address (return single best match or "NA")
- phone: Phone number (return single best match or "NA")
- zipCode: ZIP code (return single best match or "NA")
- orderId: Order ID or reference number (return single best match or "NA")

Return ONLY a valid JSON object with these exact keys: email, phone, zipCode, orderId
Return "NA" for any field where no valid information is found.

Conversation:
%s

Respond with ONLY the JSON object, no other text:`
