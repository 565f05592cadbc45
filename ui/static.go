package ui

const pageHeader = `
<html>
	<head>
	<meta http-equiv="refresh" content="1">
	<style>
		table {
			border-collapse: collapse;
			width: 100%;
		}
		th, td {
			border: 1px solid black;
			padding: 6px;
			text-align: left;
			font-family: monospace;
		}
		th {
			background-color: black;
			color: white;
		}
	</style>
		<title>coresched dashboard</title>
	</head>
	<body>
`

const pageFooter = `
	</body>
</html>
`

const processesView = `
	<p>policy: {{ .Policy }} &mdash; tick: {{ .Tick }} &mdash; last refreshed: {{ .LastRefresh }}</p>
	<table>
		<tr>
			<th>PID</th><th>Name</th><th>State</th><th>Priority</th>
			<th>Queue</th><th>RTime</th><th>IOTime</th><th>WTime</th><th>NRun</th>
		</tr>
		{{ range .Processes }}
		<tr>
			<td>{{ .PID }}</td>
			<td>{{ .Name }}</td>
			<td>{{ .State }}</td>
			<td>{{ .Priority }}</td>
			<td>{{ .Queue }}</td>
			<td>{{ .RTime }}</td>
			<td>{{ .IOTime }}</td>
			<td>{{ .PSWTime }}</td>
			<td>{{ .NRun }}</td>
		</tr>
		{{ end }}
	</table>
`
