package intent

import (
	"fmt"
	"strings"

	"github.com/voxwallet-hq/voxwallet/pkg/models"
)

// systemPromptTemplate fixes the output grammar the parser depends on. The
// response must be exactly four lines in this order; any field the model
// cannot resolve is the word ERROR.
const systemPromptTemplate = `You are the assistant of a web3 wallet.
From the provided text you must understand what the user wants to do.
If it is about moving funds, pick the best matching contact from the list below.
You always answer in exactly this format, four lines, nothing else:
1. The action (one of the available actions; if nothing matches return ERROR)
2. The contact as NAME;ADDRESS (if you cannot find the contact return ERROR)
3. The amount with its unit, for example "0.5 ETH" (if you cannot recognise the amount return ERROR)
4. The network, Ethereum or IntMax (if unspecified return IntMax)
Available actions:
- TRANSFER (the user wants to send money to someone)
- DEPOSIT (the user wants to move funds from Ethereum into the rollup)
- WITHDRAW (the user wants to move funds out of the rollup to an address)
Contacts:
%s`

// BuildSystemPrompt embeds the caller's contact list into the extraction
// grammar. An empty contact list is stated explicitly so the model does not
// invent recipients.
func BuildSystemPrompt(contacts []models.Contact) string {
	if len(contacts) == 0 {
		return fmt.Sprintf(systemPromptTemplate, "(no contacts)")
	}

	entries := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		entries = append(entries, fmt.Sprintf("%s -> %s", contact.Name, contact.WalletAddress))
	}
	return fmt.Sprintf(systemPromptTemplate, strings.Join(entries, "\n"))
}
