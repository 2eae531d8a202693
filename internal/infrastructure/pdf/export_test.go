package pdf

var FormatAmount = formatAmount
